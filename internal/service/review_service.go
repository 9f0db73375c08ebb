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

// ── 评审循环模块业务错误 ──

var (
	ErrObservationNotFound  = errors.New("观察意见不存在")
	ErrDocumentNotFound     = errors.New("文档不存在")
	ErrCorrectionNotFound   = errors.New("更正不存在")
	ErrCorrectionExists     = errors.New("该观察意见已有更正")
	ErrNotObservationAuthor = errors.New("只有提出该意见的导师可以操作")
	ErrNotProjectStudent    = errors.New("学生不属于该项目")
	ErrDocumentMismatch     = errors.New("文档不属于该项目")
)

// InvalidTransitionError 观察意见状态机的非法迁移
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("观察意见状态不允许从 %s 迁移到 %s", e.From, e.To)
}

// observationEdges 观察意见状态机的声明边。
// approved 为终态；corrected 与 rejected 都要回到 in_review 才能再核验
var observationEdges = map[string][]string{
	model.ObservationPending:   {model.ObservationInReview},
	model.ObservationInReview:  {model.ObservationCorrected, model.ObservationApproved, model.ObservationRejected},
	model.ObservationCorrected: {model.ObservationInReview},
	model.ObservationRejected:  {model.ObservationInReview},
	model.ObservationApproved:  {},
}

// ReviewService 评审循环业务接口
// 覆盖 观察意见 → 更正 → 核验 的完整闭环
type ReviewService interface {
	CreateObservation(ctx context.Context, advisorID, projectID string, req *dto.CreateObservationRequest) (*dto.ObservationResponse, error)
	GetObservation(ctx context.Context, id string) (*dto.ObservationResponse, error)
	ListByProject(ctx context.Context, projectID string, includeArchived bool) ([]dto.ObservationResponse, error)
	ListByDocument(ctx context.Context, documentID string) ([]dto.ObservationResponse, error)

	// StartReview 导师开始审阅：pending 或 corrected → in_review
	StartReview(ctx context.Context, advisorID, observationID string) (*dto.ObservationResponse, error)
	// CreateCorrection 学生提交更正：意见进入 corrected（经由声明边）
	CreateCorrection(ctx context.Context, studentID, observationID string, req *dto.CreateCorrectionRequest) (*dto.CorrectionResponse, error)
	// DeleteCorrection 学生撤回更正：意见回退到 pending
	DeleteCorrection(ctx context.Context, studentID, observationID string) error
	// VerifyCorrection 导师核验：仅允许 in_review → approved/rejected
	VerifyCorrection(ctx context.Context, advisorID, observationID string, req *dto.VerifyCorrectionRequest) (*dto.ObservationResponse, error)

	Archive(ctx context.Context, advisorID, observationID string) error
	Restore(ctx context.Context, advisorID, observationID string) error

	// CountPending 统计项目在某阶段未解决的意见数，供阶段关闭前检查
	CountPending(ctx context.Context, projectID, stage string) (int64, error)
}

type reviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, logger: logger}
}

// ────────────────────── 观察意见 ──────────────────────

func (s *reviewService) CreateObservation(ctx context.Context, advisorID, projectID string, req *dto.CreateObservationRequest) (*dto.ObservationResponse, error) {
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

	obs := &model.Observation{
		Scope:     req.Scope,
		ProjectID: projectID,
		AdvisorID: advisorID,
		Title:     req.Title,
		Body:      req.Body,
		Status:    model.ObservationPending,
	}

	switch req.Scope {
	case model.ScopeDocument:
		doc, err := s.repo.Document.GetByID(ctx, req.DocumentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDocumentNotFound
			}
			s.logger.Error("查询文档失败", zap.Error(err))
			return nil, err
		}
		if doc.ProjectID != projectID {
			return nil, ErrDocumentMismatch
		}
		obs.DocumentID = &doc.DocumentID
		obs.RaisedInVersion = doc.DocVersion
		obs.Page = req.Page
		obs.BoxX = req.BoxX
		obs.BoxY = req.BoxY
		obs.BoxWidth = req.BoxWidth
		obs.BoxHeight = req.BoxHeight
	case model.ScopeProject:
		// 项目级意见没有文档锚点
	}

	if err := s.repo.Observation.Create(ctx, obs); err != nil {
		s.logger.Error("创建观察意见失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("观察意见已创建",
		zap.String("observation_id", obs.ObservationID),
		zap.String("project_id", projectID),
		zap.String("scope", obs.Scope))
	return toObservationResponse(obs), nil
}

func (s *reviewService) GetObservation(ctx context.Context, id string) (*dto.ObservationResponse, error) {
	obs, err := s.getObservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return toObservationResponse(obs), nil
}

func (s *reviewService) ListByProject(ctx context.Context, projectID string, includeArchived bool) ([]dto.ObservationResponse, error) {
	list, err := s.repo.Observation.ListByProject(ctx, projectID, includeArchived)
	if err != nil {
		s.logger.Error("查询观察意见列表失败", zap.Error(err))
		return nil, err
	}
	return toObservationResponses(list), nil
}

func (s *reviewService) ListByDocument(ctx context.Context, documentID string) ([]dto.ObservationResponse, error) {
	list, err := s.repo.Observation.ListByDocument(ctx, documentID)
	if err != nil {
		s.logger.Error("查询观察意见列表失败", zap.Error(err))
		return nil, err
	}
	return toObservationResponses(list), nil
}

// ────────────────────── 状态机操作 ──────────────────────

func (s *reviewService) StartReview(ctx context.Context, advisorID, observationID string) (*dto.ObservationResponse, error) {
	obs, err := s.getObservation(ctx, observationID)
	if err != nil {
		return nil, err
	}
	if obs.AdvisorID != advisorID {
		return nil, ErrNotObservationAuthor
	}

	if err := applyTransition(obs, model.ObservationInReview); err != nil {
		return nil, err
	}
	if err := s.repo.Observation.Update(ctx, obs); err != nil {
		s.logger.Error("更新观察意见失败", zap.Error(err))
		return nil, err
	}
	return toObservationResponse(obs), nil
}

func (s *reviewService) CreateCorrection(ctx context.Context, studentID, observationID string, req *dto.CreateCorrectionRequest) (*dto.CorrectionResponse, error) {
	obs, err := s.getObservation(ctx, observationID)
	if err != nil {
		return nil, err
	}

	project, err := s.repo.Project.GetByID(ctx, obs.ProjectID)
	if err != nil {
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}
	if !project.HasStudent(studentID) {
		return nil, ErrNotProjectStudent
	}

	// 至多一条有效更正
	if _, err := s.repo.Correction.GetByObservation(ctx, observationID); err == nil {
		return nil, ErrCorrectionExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询更正失败", zap.Error(err))
		return nil, err
	}

	doc, err := s.repo.Document.GetByID(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("查询文档失败", zap.Error(err))
		return nil, err
	}
	if doc.ProjectID != obs.ProjectID {
		return nil, ErrDocumentMismatch
	}

	// 经由声明边抵达 corrected：pending/rejected 先过 in_review
	if obs.Status != model.ObservationInReview {
		if err := applyTransition(obs, model.ObservationInReview); err != nil {
			return nil, err
		}
	}
	if err := applyTransition(obs, model.ObservationCorrected); err != nil {
		return nil, err
	}

	correction := &model.Correction{
		ObservationID: observationID,
		StudentID:     studentID,
		DocumentID:    doc.DocumentID,
		Body:          req.Body,
	}
	if err := s.repo.Correction.Create(ctx, correction); err != nil {
		s.logger.Error("创建更正失败", zap.Error(err))
		return nil, err
	}

	obs.CorrectedInVersion = &doc.DocVersion
	if err := s.repo.Observation.Update(ctx, obs); err != nil {
		s.logger.Error("更新观察意见失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("更正已提交",
		zap.String("correction_id", correction.CorrectionID),
		zap.String("observation_id", observationID))
	return toCorrectionResponse(correction), nil
}

// DeleteCorrection 物理删除更正并把意见拉回 pending，
// 学生可据此撤回后重新提交
func (s *reviewService) DeleteCorrection(ctx context.Context, studentID, observationID string) error {
	obs, err := s.getObservation(ctx, observationID)
	if err != nil {
		return err
	}
	if obs.Status == model.ObservationApproved {
		return &InvalidTransitionError{From: obs.Status, To: model.ObservationPending}
	}

	correction, err := s.repo.Correction.GetByObservation(ctx, observationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCorrectionNotFound
		}
		s.logger.Error("查询更正失败", zap.Error(err))
		return err
	}
	if correction.StudentID != studentID {
		return ErrNotProjectStudent
	}

	if err := s.repo.Correction.Delete(ctx, correction.CorrectionID); err != nil {
		s.logger.Error("删除更正失败", zap.Error(err))
		return err
	}

	obs.Status = model.ObservationPending
	obs.CorrectedInVersion = nil
	if err := s.repo.Observation.Update(ctx, obs); err != nil {
		s.logger.Error("更新观察意见失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *reviewService) VerifyCorrection(ctx context.Context, advisorID, observationID string, req *dto.VerifyCorrectionRequest) (*dto.ObservationResponse, error) {
	obs, err := s.getObservation(ctx, observationID)
	if err != nil {
		return nil, err
	}
	if obs.AdvisorID != advisorID {
		return nil, ErrNotObservationAuthor
	}

	target := model.ObservationApproved
	if req.Result == "rejected" {
		target = model.ObservationRejected
	}
	// 核验只接受 in_review；corrected 状态要先 StartReview
	if obs.Status != model.ObservationInReview {
		return nil, &InvalidTransitionError{From: obs.Status, To: target}
	}
	if err := applyTransition(obs, target); err != nil {
		return nil, err
	}

	obs.VerifyComments = req.Comments
	if err := s.repo.Observation.Update(ctx, obs); err != nil {
		s.logger.Error("更新观察意见失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("更正已核验",
		zap.String("observation_id", observationID),
		zap.String("result", target))
	return toObservationResponse(obs), nil
}

// ────────────────────── 归档 ──────────────────────

func (s *reviewService) Archive(ctx context.Context, advisorID, observationID string) error {
	return s.setArchived(ctx, advisorID, observationID, true)
}

func (s *reviewService) Restore(ctx context.Context, advisorID, observationID string) error {
	return s.setArchived(ctx, advisorID, observationID, false)
}

func (s *reviewService) setArchived(ctx context.Context, advisorID, observationID string, archived bool) error {
	obs, err := s.getObservation(ctx, observationID)
	if err != nil {
		return err
	}
	if obs.AdvisorID != advisorID {
		return ErrNotObservationAuthor
	}
	if obs.Archived == archived {
		return nil
	}
	obs.Archived = archived
	return s.repo.Observation.Update(ctx, obs)
}

func (s *reviewService) CountPending(ctx context.Context, projectID, stage string) (int64, error) {
	return s.repo.Observation.CountPendingByStage(ctx, projectID, stage)
}

// ── 内部辅助方法 ──

func (s *reviewService) getObservation(ctx context.Context, id string) (*model.Observation, error) {
	obs, err := s.repo.Observation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObservationNotFound
		}
		s.logger.Error("查询观察意见失败", zap.Error(err))
		return nil, err
	}
	return obs, nil
}

// applyTransition 沿声明边迁移状态，越界返回 InvalidTransitionError
func applyTransition(obs *model.Observation, to string) error {
	for _, allowed := range observationEdges[obs.Status] {
		if allowed == to {
			obs.Status = to
			return nil
		}
	}
	return &InvalidTransitionError{From: obs.Status, To: to}
}

func toObservationResponse(o *model.Observation) *dto.ObservationResponse {
	resp := &dto.ObservationResponse{
		ID:                 o.ObservationID,
		Scope:              o.Scope,
		ProjectID:          o.ProjectID,
		AdvisorID:          o.AdvisorID,
		Title:              o.Title,
		Body:               o.Body,
		Page:               o.Page,
		BoxX:               o.BoxX,
		BoxY:               o.BoxY,
		BoxWidth:           o.BoxWidth,
		BoxHeight:          o.BoxHeight,
		Status:             o.Status,
		Archived:           o.Archived,
		RaisedInVersion:    o.RaisedInVersion,
		CorrectedInVersion: o.CorrectedInVersion,
		CreatedAt:          o.CreatedAt.Format(time.RFC3339),
	}
	if o.DocumentID != nil {
		resp.DocumentID = *o.DocumentID
	}
	if o.Correction != nil {
		resp.Correction = toCorrectionResponse(o.Correction)
	}
	return resp
}

func toObservationResponses(list []model.Observation) []dto.ObservationResponse {
	resp := make([]dto.ObservationResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *toObservationResponse(&list[i]))
	}
	return resp
}

func toCorrectionResponse(c *model.Correction) *dto.CorrectionResponse {
	return &dto.CorrectionResponse{
		ID:            c.CorrectionID,
		ObservationID: c.ObservationID,
		StudentID:     c.StudentID,
		DocumentID:    c.DocumentID,
		Body:          c.Body,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}
