package handler

import "github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Period  *PeriodHandler
	Group   *GroupHandler
	Project *ProjectHandler
	Review  *ReviewHandler
	Defense *DefenseHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		User:    NewUserHandler(svc.User),
		Period:  NewPeriodHandler(svc.Period),
		Group:   NewGroupHandler(svc.Group, svc.Enrollment),
		Project: NewProjectHandler(svc.Project, svc.Stage),
		Review:  NewReviewHandler(svc.Review),
		Defense: NewDefenseHandler(svc.Defense),
		Export:  NewExportHandler(svc.Export),
	}
}
