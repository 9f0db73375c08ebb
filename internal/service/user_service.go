package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/repository"
)

// UserService 用户查询业务接口（管理端）
type UserService interface {
	List(ctx context.Context, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	ListAdvisors(ctx context.Context) ([]dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.UserResponse{
			ID:    users[i].UserID,
			Name:  users[i].Name,
			Email: users[i].Email,
			Role:  users[i].Role,
		})
	}
	return resp, total, nil
}

// ListAdvisors 列出全部导师，供管理员建组时选择
func (s *userService) ListAdvisors(ctx context.Context) ([]dto.UserResponse, error) {
	advisors, err := s.repo.Advisor.List(ctx)
	if err != nil {
		s.logger.Error("查询导师列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.UserResponse, 0, len(advisors))
	for i := range advisors {
		item := dto.UserResponse{
			ProfileID: advisors[i].AdvisorID,
			Role:      "advisor",
		}
		if advisors[i].User != nil {
			item.ID = advisors[i].User.UserID
			item.Name = advisors[i].User.Name
			item.Email = advisors[i].User.Email
		}
		resp = append(resp, item)
	}
	return resp, nil
}
