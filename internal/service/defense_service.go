package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/repository"
)

// ── 答辩流程模块业务错误 ──

var (
	ErrInvalidStage = errors.New("项目当前阶段不允许该操作")
	ErrTribunalSize = errors.New("答辩委员会须为 3 到 5 人")
)

// DefenseService 答辩流程业务接口
type DefenseService interface {
	// RequestDefense 学生发起答辩申请：ready_for_defense → defense_requested
	RequestDefense(ctx context.Context, studentID, projectID string, req *dto.RequestDefenseRequest) (*dto.ProjectResponse, error)
	// Respond 管理员答复：批准则 finished 并组建答辩委员会，驳回则退回 ready_for_defense
	Respond(ctx context.Context, projectID string, req *dto.RespondDefenseRequest) (*dto.ProjectResponse, error)
}

type defenseService struct {
	repo       *repository.Repository
	enrollment EnrollmentService
	logger     *zap.Logger
	now        func() time.Time
}

// NewDefenseService 创建 DefenseService 实例
func NewDefenseService(repo *repository.Repository, enrollment EnrollmentService, logger *zap.Logger) DefenseService {
	return &defenseService{
		repo:       repo,
		enrollment: enrollment,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *defenseService) RequestDefense(ctx context.Context, studentID, projectID string, req *dto.RequestDefenseRequest) (*dto.ProjectResponse, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasStudent(studentID) {
		return nil, ErrNotProjectStudent
	}
	if project.Stage != model.StageReadyForDefense {
		return nil, ErrInvalidStage
	}

	now := s.now()
	project.Stage = model.StageDefenseRequested
	project.MemorialPath = req.MemorialPath
	project.DefenseRequestedAt = &now

	if err := s.repo.Project.Update(ctx, project); err != nil {
		s.logger.Error("更新项目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("答辩申请已提交",
		zap.String("project_id", projectID),
		zap.String("student_id", studentID))
	return toProjectResponse(project), nil
}

func (s *defenseService) Respond(ctx context.Context, projectID string, req *dto.RespondDefenseRequest) (*dto.ProjectResponse, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Stage != model.StageDefenseRequested {
		return nil, ErrInvalidStage
	}

	if !req.Approved {
		// 驳回：退回 ready_for_defense，学生修订后可再次申请
		project.Stage = model.StageReadyForDefense
		project.DefenseComments = req.Comments
		project.DefenseRequestedAt = nil
		if err := s.repo.Project.Update(ctx, project); err != nil {
			s.logger.Error("更新项目失败", zap.Error(err))
			return nil, err
		}

		s.logger.Info("答辩申请已驳回", zap.String("project_id", projectID))
		return toProjectResponse(project), nil
	}

	if len(req.Tribunal) < 3 || len(req.Tribunal) > 5 {
		return nil, ErrTribunalSize
	}

	tribunal := make(model.TribunalList, 0, len(req.Tribunal))
	for _, m := range req.Tribunal {
		tribunal = append(tribunal, model.TribunalMember{Name: m.Name, Email: m.Email})
	}

	project.Stage = model.StageFinished
	project.Tribunal = tribunal
	project.DefenseComments = req.Comments
	if err := s.repo.Project.Update(ctx, project); err != nil {
		s.logger.Error("更新项目失败", zap.Error(err))
		return nil, err
	}

	// 项目完结后学生退出当前小组：尽力级联，失败只记日志
	for i := range project.Students {
		if err := s.enrollment.ForceWithdrawActive(ctx, project.Students[i].StudentID); err != nil {
			s.logger.Warn("退组级联失败",
				zap.String("student_id", project.Students[i].StudentID),
				zap.Error(err))
		}
	}

	s.logger.Info("答辩申请已批准",
		zap.String("project_id", projectID),
		zap.Int("tribunal_size", len(tribunal)))
	return toProjectResponse(project), nil
}

func (s *defenseService) getProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}
	return project, nil
}
