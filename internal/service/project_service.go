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

// ── 项目模块业务错误 ──

var (
	ErrProjectNotFound   = errors.New("项目不存在")
	ErrStudentHasProject = errors.New("学生已有未完结的项目")
	ErrMeetingNotFound   = errors.New("会议不存在")
)

// ProjectService 项目业务接口
// 覆盖 项目/文档版本/选题提案/指导会议 的日常操作；阶段推进见 StageService
type ProjectService interface {
	Create(ctx context.Context, studentID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error)
	GetMine(ctx context.Context, studentID string) (*dto.ProjectResponse, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]dto.ProjectResponse, error)

	// RegisterDocument 登记新文档版本，版本号在项目内单调递增
	RegisterDocument(ctx context.Context, studentID, projectID string, req *dto.RegisterDocumentRequest) (*dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, projectID string) ([]dto.DocumentResponse, error)

	SubmitProposal(ctx context.Context, studentID, projectID string, req *dto.CreateProposalRequest) (*dto.ProposalResponse, error)
	ListProposals(ctx context.Context, projectID string) ([]dto.ProposalResponse, error)

	CreateMeeting(ctx context.Context, advisorID string, req *dto.CreateMeetingRequest) (*dto.MeetingResponse, error)
	UpdateMeeting(ctx context.Context, advisorID, meetingID string, req *dto.UpdateMeetingRequest) (*dto.MeetingResponse, error)
	ListMeetings(ctx context.Context, projectID string) ([]dto.MeetingResponse, error)
}

type projectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(repo *repository.Repository, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, logger: logger}
}

// ────────────────────── 项目 ──────────────────────

// Create 创建项目并附带首个选题提案；学生同一时间只能有一个未完结项目
func (s *projectService) Create(ctx context.Context, studentID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	if _, err := s.repo.Project.GetActiveByStudent(ctx, studentID); err == nil {
		return nil, ErrStudentHasProject
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生项目失败", zap.Error(err))
		return nil, err
	}

	project := &model.Project{
		Title: req.Title,
		Body:  req.Body,
		Stage: model.StageProposal,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Project.Create(ctx, project); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建项目失败", zap.Error(err))
		return nil, err
	}
	if err := txRepo.Project.AddStudent(ctx, project.ProjectID, studentID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("绑定项目学生失败", zap.Error(err))
		return nil, err
	}

	proposal := &model.Proposal{
		ProjectID: project.ProjectID,
		StudentID: studentID,
		Title:     req.Title,
		Body:      req.Body,
		Status:    model.ProposalPending,
	}
	if err := txRepo.Proposal.Create(ctx, proposal); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建选题提案失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("项目已创建",
		zap.String("project_id", project.ProjectID),
		zap.String("student_id", studentID))
	return toProjectResponse(project), nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) GetMine(ctx context.Context, studentID string) (*dto.ProjectResponse, error) {
	project, err := s.repo.Project.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询学生项目失败", zap.Error(err))
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) ListByAdvisor(ctx context.Context, advisorID string) ([]dto.ProjectResponse, error) {
	projects, err := s.repo.Project.ListByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询项目列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, *toProjectResponse(&projects[i]))
	}
	return resp, nil
}

// ────────────────────── 文档 ──────────────────────

func (s *projectService) RegisterDocument(ctx context.Context, studentID, projectID string, req *dto.RegisterDocumentRequest) (*dto.DocumentResponse, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasStudent(studentID) {
		return nil, ErrNotProjectStudent
	}

	max, err := s.repo.Document.MaxVersion(ctx, projectID)
	if err != nil {
		s.logger.Error("查询文档版本失败", zap.Error(err))
		return nil, err
	}

	doc := &model.Document{
		ProjectID:  projectID,
		Stage:      req.Stage,
		DocVersion: max + 1,
		Path:       req.Path,
	}
	if err := s.repo.Document.Create(ctx, doc); err != nil {
		s.logger.Error("登记文档失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("文档已登记",
		zap.String("document_id", doc.DocumentID),
		zap.String("project_id", projectID),
		zap.Int("doc_version", doc.DocVersion))
	return toDocumentResponse(doc), nil
}

func (s *projectService) ListDocuments(ctx context.Context, projectID string) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.Document.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("查询文档列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, *toDocumentResponse(&docs[i]))
	}
	return resp, nil
}

// ────────────────────── 选题提案 ──────────────────────

func (s *projectService) SubmitProposal(ctx context.Context, studentID, projectID string, req *dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasStudent(studentID) {
		return nil, ErrNotProjectStudent
	}

	proposal := &model.Proposal{
		ProjectID: projectID,
		StudentID: studentID,
		Title:     req.Title,
		Body:      req.Body,
		Status:    model.ProposalPending,
	}
	if err := s.repo.Proposal.Create(ctx, proposal); err != nil {
		s.logger.Error("创建选题提案失败", zap.Error(err))
		return nil, err
	}
	return toProposalResponse(proposal), nil
}

func (s *projectService) ListProposals(ctx context.Context, projectID string) ([]dto.ProposalResponse, error) {
	proposals, err := s.repo.Proposal.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("查询提案列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		resp = append(resp, *toProposalResponse(&proposals[i]))
	}
	return resp, nil
}

// ────────────────────── 指导会议 ──────────────────────

func (s *projectService) CreateMeeting(ctx context.Context, advisorID string, req *dto.CreateMeetingRequest) (*dto.MeetingResponse, error) {
	project, err := s.getProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.AdvisorID == nil || *project.AdvisorID != advisorID {
		return nil, ErrNotProjectAdvisor
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrPeriodDateInvalid
	}

	meeting := &model.Meeting{
		ProjectID:   req.ProjectID,
		AdvisorID:   advisorID,
		Subject:     req.Subject,
		ScheduledAt: scheduledAt,
		DurationMin: req.DurationMin,
		Status:      model.MeetingScheduled,
	}
	if meeting.DurationMin <= 0 {
		meeting.DurationMin = 30
	}
	if err := s.repo.Meeting.Create(ctx, meeting); err != nil {
		s.logger.Error("创建会议失败", zap.Error(err))
		return nil, err
	}
	return toMeetingResponse(meeting), nil
}

func (s *projectService) UpdateMeeting(ctx context.Context, advisorID, meetingID string, req *dto.UpdateMeetingRequest) (*dto.MeetingResponse, error) {
	meeting, err := s.repo.Meeting.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		s.logger.Error("查询会议失败", zap.Error(err))
		return nil, err
	}
	if meeting.AdvisorID != advisorID {
		return nil, ErrNotProjectAdvisor
	}

	meeting.Status = req.Status
	if req.Notes != "" {
		meeting.Notes = req.Notes
	}
	if err := s.repo.Meeting.Update(ctx, meeting); err != nil {
		s.logger.Error("更新会议失败", zap.Error(err))
		return nil, err
	}
	return toMeetingResponse(meeting), nil
}

func (s *projectService) ListMeetings(ctx context.Context, projectID string) ([]dto.MeetingResponse, error) {
	meetings, err := s.repo.Meeting.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("查询会议列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.MeetingResponse, 0, len(meetings))
	for i := range meetings {
		resp = append(resp, *toMeetingResponse(&meetings[i]))
	}
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *projectService) getProject(ctx context.Context, id string) (*model.Project, error) {
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

func toProjectResponse(p *model.Project) *dto.ProjectResponse {
	resp := &dto.ProjectResponse{
		ID:               p.ProjectID,
		Title:            p.Title,
		Body:             p.Body,
		Stage:            p.Stage,
		ProposalApproved: p.ProposalApproved,
		ProposalComments: p.ProposalComments,
		ProfileApproved:  p.ProfileApproved,
		ProfileComments:  p.ProfileComments,
		ProjectApproved:  p.ProjectApproved,
		ProjectComments:  p.ProjectComments,
		ReadyForDefense:  p.ReadyForDefense,
		MemorialPath:     p.MemorialPath,
		DefenseComments:  p.DefenseComments,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
	if p.AdvisorID != nil {
		resp.AdvisorID = *p.AdvisorID
	}
	if p.Advisor != nil && p.Advisor.User != nil {
		resp.AdvisorName = p.Advisor.User.Name
	}
	if p.ProposalApprovedAt != nil {
		resp.ProposalApprovedAt = p.ProposalApprovedAt.Format(time.RFC3339)
	}
	if p.ProfileApprovedAt != nil {
		resp.ProfileApprovedAt = p.ProfileApprovedAt.Format(time.RFC3339)
	}
	if p.ProjectApprovedAt != nil {
		resp.ProjectApprovedAt = p.ProjectApprovedAt.Format(time.RFC3339)
	}
	for i := range p.Tribunal {
		resp.Tribunal = append(resp.Tribunal, dto.TribunalMember{
			Name:  p.Tribunal[i].Name,
			Email: p.Tribunal[i].Email,
		})
	}
	for i := range p.Students {
		item := dto.UserResponse{ProfileID: p.Students[i].StudentID, Role: model.RoleStudent}
		if p.Students[i].User != nil {
			item.ID = p.Students[i].User.UserID
			item.Name = p.Students[i].User.Name
			item.Email = p.Students[i].User.Email
		}
		resp.Students = append(resp.Students, item)
	}
	return resp
}

func toDocumentResponse(d *model.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:         d.DocumentID,
		ProjectID:  d.ProjectID,
		Stage:      d.Stage,
		DocVersion: d.DocVersion,
		Path:       d.Path,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
}

func toProposalResponse(p *model.Proposal) *dto.ProposalResponse {
	resp := &dto.ProposalResponse{
		ID:             p.ProposalID,
		ProjectID:      p.ProjectID,
		StudentID:      p.StudentID,
		Title:          p.Title,
		Body:           p.Body,
		Status:         p.Status,
		ReviewComments: p.ReviewComments,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
	if p.ReviewedAt != nil {
		resp.ReviewedAt = p.ReviewedAt.Format(time.RFC3339)
	}
	return resp
}

func toMeetingResponse(m *model.Meeting) *dto.MeetingResponse {
	return &dto.MeetingResponse{
		ID:          m.MeetingID,
		ProjectID:   m.ProjectID,
		AdvisorID:   m.AdvisorID,
		Subject:     m.Subject,
		ScheduledAt: m.ScheduledAt.Format(time.RFC3339),
		DurationMin: m.DurationMin,
		Status:      m.Status,
		Notes:       m.Notes,
	}
}
