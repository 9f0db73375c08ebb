package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/repository"
)

// ── 阶段推进模块业务错误 ──

var (
	ErrNotProjectAdvisor    = errors.New("只有项目导师可以操作")
	ErrStageOutOfOrder      = errors.New("只能批准项目当前所处的阶段")
	ErrStageAlreadyApproved = errors.New("该阶段已批准")
	ErrNoDocuments          = errors.New("该阶段尚未登记任何文档")
	ErrProposalNotFound     = errors.New("选题提案不存在")
)

// StageBlockedError 阶段关闭被未解决的观察意见阻塞
type StageBlockedError struct {
	Stage   string
	Pending int64
}

func (e *StageBlockedError) Error() string {
	return fmt.Sprintf("阶段 %s 仍有 %d 条未解决的观察意见", e.Stage, e.Pending)
}

// StageService 阶段推进业务接口
// 阶段只能沿 proposal → profile → project → ready_for_defense 逐级关闭，
// 每次关闭前检查该阶段是否还有未解决的观察意见
type StageService interface {
	ApproveStage(ctx context.Context, advisorID, projectID string, req *dto.ApproveStageRequest) (*dto.ProjectResponse, error)
	ManageProposedTopic(ctx context.Context, advisorID, projectID string, req *dto.ManageTopicRequest) (*dto.ProposalResponse, error)
}

type stageService struct {
	repo       *repository.Repository
	enrollment EnrollmentService
	review     ReviewService
	logger     *zap.Logger
	now        func() time.Time
}

// NewStageService 创建 StageService 实例
func NewStageService(repo *repository.Repository, enrollment EnrollmentService, review ReviewService, logger *zap.Logger) StageService {
	return &stageService{
		repo:       repo,
		enrollment: enrollment,
		review:     review,
		logger:     logger,
		now:        time.Now,
	}
}

// ────────────────────── ApproveStage ──────────────────────

func (s *stageService) ApproveStage(ctx context.Context, advisorID, projectID string, req *dto.ApproveStageRequest) (*dto.ProjectResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}
	if project.AdvisorID == nil || *project.AdvisorID != advisorID {
		return nil, ErrNotProjectAdvisor
	}

	// 不可跳级：只能关闭当前阶段
	if project.Stage != req.Stage {
		return nil, ErrStageOutOfOrder
	}

	// 关闭前该阶段不能残留未解决的意见
	pending, err := s.review.CountPending(ctx, projectID, req.Stage)
	if err != nil {
		s.logger.Error("统计未解决意见失败", zap.Error(err))
		return nil, err
	}
	if pending > 0 {
		return nil, &StageBlockedError{Stage: req.Stage, Pending: pending}
	}

	now := s.now()
	switch req.Stage {
	case model.StageProposal:
		if project.ProposalApproved {
			return nil, ErrStageAlreadyApproved
		}
		project.ProposalApproved = true
		project.ProposalApprovedAt = &now
		project.ProposalComments = req.Comments
		project.Stage = model.StageProfile

	case model.StageProfile:
		if project.ProfileApproved {
			return nil, ErrStageAlreadyApproved
		}
		count, err := s.repo.Document.CountByProjectStage(ctx, projectID, model.StageProfile)
		if err != nil {
			s.logger.Error("统计阶段文档失败", zap.Error(err))
			return nil, err
		}
		if count == 0 {
			return nil, ErrNoDocuments
		}
		project.ProfileApproved = true
		project.ProfileApprovedAt = &now
		project.ProfileComments = req.Comments
		project.Stage = model.StageProject

	case model.StageProject:
		if project.ProjectApproved {
			return nil, ErrStageAlreadyApproved
		}
		project.ProjectApproved = true
		project.ProjectApprovedAt = &now
		project.ProjectComments = req.Comments
		project.ReadyForDefense = true
		project.Stage = model.StageReadyForDefense

	default:
		return nil, ErrStageOutOfOrder
	}

	if err := s.repo.Project.Update(ctx, project); err != nil {
		s.logger.Error("更新项目阶段失败", zap.Error(err))
		return nil, err
	}

	// Perfil 通过后学生不再属于 Taller I：尽力退组，失败只记日志
	if req.Stage == model.StageProfile {
		for i := range project.Students {
			if err := s.enrollment.ForceWithdrawActive(ctx, project.Students[i].StudentID); err != nil {
				s.logger.Warn("退组级联失败",
					zap.String("student_id", project.Students[i].StudentID),
					zap.Error(err))
			}
		}
	}

	s.logger.Info("阶段已批准",
		zap.String("project_id", projectID),
		zap.String("stage", req.Stage),
		zap.String("next_stage", project.Stage))
	return toProjectResponse(project), nil
}

// ────────────────────── ManageProposedTopic ──────────────────────

// ManageProposedTopic 导师处理选题提案。
// 批准等同于关闭 proposal 阶段：项目采纳提案标题、盖章进入 profile 阶段，
// 其余 pending 提案自动置为 rejected；驳回则清除批准标记，项目停留在 proposal 阶段
func (s *stageService) ManageProposedTopic(ctx context.Context, advisorID, projectID string, req *dto.ManageTopicRequest) (*dto.ProposalResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}
	if project.AdvisorID == nil || *project.AdvisorID != advisorID {
		return nil, ErrNotProjectAdvisor
	}

	// 选题只在 proposal 阶段可处理
	if project.Stage != model.StageProposal {
		return nil, ErrStageOutOfOrder
	}

	proposal, err := s.repo.Proposal.GetByID(ctx, req.ProposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		s.logger.Error("查询提案失败", zap.Error(err))
		return nil, err
	}
	if proposal.ProjectID != projectID {
		return nil, ErrProposalNotFound
	}

	now := s.now()
	proposal.ReviewComments = req.Comments
	proposal.ReviewedAt = &now

	if req.Action == "reject" {
		proposal.Status = model.ProposalRejected
		project.ProposalApproved = false
		project.ProposalApprovedAt = nil
		project.ProposalComments = req.Comments
		if err := s.repo.Proposal.Update(ctx, proposal); err != nil {
			s.logger.Error("更新提案失败", zap.Error(err))
			return nil, err
		}
		if err := s.repo.Project.Update(ctx, project); err != nil {
			s.logger.Error("更新项目失败", zap.Error(err))
			return nil, err
		}
		s.logger.Info("选题提案已驳回",
			zap.String("project_id", projectID),
			zap.String("proposal_id", proposal.ProposalID))
		return toProposalResponse(proposal), nil
	}

	if project.ProposalApproved {
		return nil, ErrStageAlreadyApproved
	}

	// 与 ApproveStage(proposal) 同一道闸：阶段内不能残留未解决的意见
	pending, err := s.review.CountPending(ctx, projectID, model.StageProposal)
	if err != nil {
		s.logger.Error("统计未解决意见失败", zap.Error(err))
		return nil, err
	}
	if pending > 0 {
		return nil, &StageBlockedError{Stage: model.StageProposal, Pending: pending}
	}

	proposal.Status = model.ProposalApproved

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Proposal.Update(ctx, proposal); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新提案失败", zap.Error(err))
		return nil, err
	}
	if err := txRepo.Proposal.RejectOtherPending(ctx, projectID, proposal.ProposalID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("驳回其余提案失败", zap.Error(err))
		return nil, err
	}

	// 项目采纳获批提案的标题与内容，并关闭 proposal 阶段
	project.Title = proposal.Title
	if proposal.Body != "" {
		project.Body = proposal.Body
	}
	project.ProposalApproved = true
	project.ProposalApprovedAt = &now
	project.ProposalComments = req.Comments
	project.Stage = model.StageProfile
	if err := txRepo.Project.Update(ctx, project); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新项目失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("选题提案已批准",
		zap.String("project_id", projectID),
		zap.String("proposal_id", proposal.ProposalID))
	return toProposalResponse(proposal), nil
}
