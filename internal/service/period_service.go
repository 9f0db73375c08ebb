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

// ── 学期模块业务错误 ──

var (
	ErrPeriodNotFound    = errors.New("学期不存在")
	ErrNoActivePeriod    = errors.New("当前没有激活的学期")
	ErrPeriodDateInvalid = errors.New("学期日期区间不合法")
)

const dateLayout = "2006-01-02"

// PeriodService 学期业务接口
type PeriodService interface {
	Create(ctx context.Context, req *dto.CreatePeriodRequest) (*dto.PeriodResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error)
	GetActive(ctx context.Context) (*dto.PeriodResponse, error)
	List(ctx context.Context) ([]dto.PeriodResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest) (*dto.PeriodResponse, error)
	Activate(ctx context.Context, id string) (*dto.PeriodResponse, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger}
}

func (s *periodService) Create(ctx context.Context, req *dto.CreatePeriodRequest) (*dto.PeriodResponse, error) {
	semStart, err1 := time.Parse(dateLayout, req.SemesterStart)
	semEnd, err2 := time.Parse(dateLayout, req.SemesterEnd)
	enrStart, err3 := time.Parse(dateLayout, req.EnrollmentStart)
	enrEnd, err4 := time.Parse(dateLayout, req.EnrollmentEnd)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, ErrPeriodDateInvalid
	}
	// 报名窗口必须落在学期区间内
	if semEnd.Before(semStart) || enrEnd.Before(enrStart) ||
		enrStart.Before(semStart) || enrEnd.After(semEnd) {
		return nil, ErrPeriodDateInvalid
	}

	period := &model.Period{
		Name:            req.Name,
		SemesterStart:   semStart,
		SemesterEnd:     semEnd,
		EnrollmentStart: enrStart,
		EnrollmentEnd:   enrEnd,
	}
	if err := s.repo.Period.Create(ctx, period); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学期已创建", zap.String("period_id", period.PeriodID), zap.String("name", period.Name))
	return toPeriodResponse(period), nil
}

func (s *periodService) GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}
	return toPeriodResponse(period), nil
}

func (s *periodService) GetActive(ctx context.Context) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, err
	}
	return toPeriodResponse(period), nil
}

func (s *periodService) List(ctx context.Context) ([]dto.PeriodResponse, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("查询学期列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		resp = append(resp, *toPeriodResponse(&periods[i]))
	}
	return resp, nil
}

func (s *periodService) Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.SemesterStart != nil {
		t, err := time.Parse(dateLayout, *req.SemesterStart)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		period.SemesterStart = t
	}
	if req.SemesterEnd != nil {
		t, err := time.Parse(dateLayout, *req.SemesterEnd)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		period.SemesterEnd = t
	}
	if req.EnrollmentStart != nil {
		t, err := time.Parse(dateLayout, *req.EnrollmentStart)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		period.EnrollmentStart = t
	}
	if req.EnrollmentEnd != nil {
		t, err := time.Parse(dateLayout, *req.EnrollmentEnd)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		period.EnrollmentEnd = t
	}

	if period.SemesterEnd.Before(period.SemesterStart) ||
		period.EnrollmentEnd.Before(period.EnrollmentStart) ||
		period.EnrollmentStart.Before(period.SemesterStart) ||
		period.EnrollmentEnd.After(period.SemesterEnd) {
		return nil, ErrPeriodDateInvalid
	}

	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.logger.Error("更新学期失败", zap.Error(err))
		return nil, err
	}
	return toPeriodResponse(period), nil
}

// Activate 激活学期。先清除旧的激活标志再置位新学期，
// 两步在同一事务内完成，保证全局至多一个激活学期
func (s *periodService) Activate(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Period.ClearActive(ctx); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除激活标志失败", zap.Error(err))
		return nil, err
	}

	period.IsActive = true
	if err := txRepo.Period.Update(ctx, period); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("激活学期失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("学期已激活", zap.String("period_id", period.PeriodID))
	return toPeriodResponse(period), nil
}

func (s *periodService) Delete(ctx context.Context, id string, deletedBy string) error {
	if _, err := s.repo.Period.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return err
	}
	return s.repo.Period.Delete(ctx, id, deletedBy)
}

func toPeriodResponse(p *model.Period) *dto.PeriodResponse {
	return &dto.PeriodResponse{
		ID:              p.PeriodID,
		Name:            p.Name,
		SemesterStart:   p.SemesterStart.Format(dateLayout),
		SemesterEnd:     p.SemesterEnd.Format(dateLayout),
		EnrollmentStart: p.EnrollmentStart.Format(dateLayout),
		EnrollmentEnd:   p.EnrollmentEnd.Format(dateLayout),
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}
