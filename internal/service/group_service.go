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

// ── 小组模块业务错误 ──

var (
	ErrGroupNotFound   = errors.New("小组不存在")
	ErrGroupNotEmpty   = errors.New("小组仍有成员，不可删除")
	ErrAdvisorNotFound = errors.New("导师不存在")
)

// GroupService 小组业务接口
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GroupResponse, error)
	ListByPeriod(ctx context.Context, periodID string) ([]dto.GroupResponse, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]dto.GroupResponse, error)
	ListMembers(ctx context.Context, groupID string) ([]dto.GroupMemberResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	if _, err := s.repo.Period.GetByID(ctx, req.PeriodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Advisor.GetByID(ctx, req.AdvisorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdvisorNotFound
		}
		s.logger.Error("查询导师失败", zap.Error(err))
		return nil, err
	}

	group := &model.Group{
		Name:      req.Name,
		GroupType: req.GroupType,
		PeriodID:  req.PeriodID,
		AdvisorID: req.AdvisorID,
		IsActive:  true,
	}
	if req.ProfileDeadline != nil {
		t, err := time.Parse(dateLayout, *req.ProfileDeadline)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		group.ProfileDeadline = &t
	}
	if req.ProjectDeadline != nil {
		t, err := time.Parse(dateLayout, *req.ProjectDeadline)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		group.ProjectDeadline = &t
	}

	if err := s.repo.Group.Create(ctx, group); err != nil {
		s.logger.Error("创建小组失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("小组已创建",
		zap.String("group_id", group.GroupID),
		zap.String("group_type", group.GroupType))
	return s.toResponse(ctx, group), nil
}

func (s *groupService) GetByID(ctx context.Context, id string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, group), nil
}

func (s *groupService) ListByPeriod(ctx context.Context, periodID string) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询小组列表失败", zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, groups), nil
}

func (s *groupService) ListByAdvisor(ctx context.Context, advisorID string) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.ListByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询小组列表失败", zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, groups), nil
}

func (s *groupService) ListMembers(ctx context.Context, groupID string) ([]dto.GroupMemberResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}

	students, err := s.repo.Group.ListStudents(ctx, groupID)
	if err != nil {
		s.logger.Error("查询小组成员失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.GroupMemberResponse, 0, len(students))
	for i := range students {
		item := dto.GroupMemberResponse{
			StudentID: students[i].StudentID,
			Career:    students[i].Career,
		}
		if students[i].User != nil {
			item.Name = students[i].User.Name
			item.Email = students[i].User.Email
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *groupService) Update(ctx context.Context, id string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}
	if req.ProfileDeadline != nil {
		t, err := time.Parse(dateLayout, *req.ProfileDeadline)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		group.ProfileDeadline = &t
	}
	if req.ProjectDeadline != nil {
		t, err := time.Parse(dateLayout, *req.ProjectDeadline)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		group.ProjectDeadline = &t
	}

	if err := s.repo.Group.Update(ctx, group); err != nil {
		s.logger.Error("更新小组失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(ctx, group), nil
}

// Delete 删除小组；有成员时拒绝
func (s *groupService) Delete(ctx context.Context, id string, deletedBy string) error {
	if _, err := s.repo.Group.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return err
	}

	count, err := s.repo.Group.CountStudents(ctx, id)
	if err != nil {
		s.logger.Error("统计小组成员失败", zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrGroupNotEmpty
	}

	return s.repo.Group.Delete(ctx, id, deletedBy)
}

// ── 内部辅助方法 ──

func (s *groupService) toResponse(ctx context.Context, g *model.Group) *dto.GroupResponse {
	resp := &dto.GroupResponse{
		ID:        g.GroupID,
		Name:      g.Name,
		GroupType: g.GroupType,
		PeriodID:  g.PeriodID,
		AdvisorID: g.AdvisorID,
		IsActive:  g.IsActive,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
	if g.ProfileDeadline != nil {
		d := g.ProfileDeadline.Format(dateLayout)
		resp.ProfileDeadline = &d
	}
	if g.ProjectDeadline != nil {
		d := g.ProjectDeadline.Format(dateLayout)
		resp.ProjectDeadline = &d
	}
	if g.Advisor != nil && g.Advisor.User != nil {
		resp.AdvisorName = g.Advisor.User.Name
	}
	if count, err := s.repo.Group.CountStudents(ctx, g.GroupID); err == nil {
		resp.StudentCount = int(count)
	}
	return resp
}

func (s *groupService) toResponses(ctx context.Context, groups []model.Group) []dto.GroupResponse {
	resp := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		resp = append(resp, *s.toResponse(ctx, &groups[i]))
	}
	return resp
}
