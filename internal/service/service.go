package service

import (
	"go.uber.org/zap"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/config"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/repository"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/jwt"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Period     PeriodService
	Group      GroupService
	Enrollment EnrollmentService
	Project    ProjectService
	Review     ReviewService
	Stage      StageService
	Defense    DefenseService
	Export     ExportService
}

// NewService 创建 Service 聚合
// StageService 与 DefenseService 持有 EnrollmentService：阶段批准与答辩批准
// 的退组级联是对 ForceWithdrawActive 的显式同步调用，依赖方向保持单向
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	enrollment := NewEnrollmentService(repo, logger)
	review := NewReviewService(repo, logger)

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, logger),
		Period:     NewPeriodService(repo, logger),
		Group:      NewGroupService(repo, logger),
		Enrollment: enrollment,
		Project:    NewProjectService(repo, logger),
		Review:     review,
		Stage:      NewStageService(repo, enrollment, review, logger),
		Defense:    NewDefenseService(repo, enrollment, logger),
		Export:     NewExportService(repo, logger),
	}
}
