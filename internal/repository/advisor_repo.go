package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// AdvisorRepository 导师档案数据访问接口
type AdvisorRepository interface {
	Create(ctx context.Context, advisor *model.Advisor) error
	GetByID(ctx context.Context, id string) (*model.Advisor, error)
	GetByUserID(ctx context.Context, userID string) (*model.Advisor, error)
	List(ctx context.Context) ([]model.Advisor, error)
}

type advisorRepo struct {
	db *gorm.DB
}

// NewAdvisorRepo 创建 AdvisorRepository 实例
func NewAdvisorRepo(db *gorm.DB) AdvisorRepository {
	return &advisorRepo{db: db}
}

func (r *advisorRepo) Create(ctx context.Context, advisor *model.Advisor) error {
	return r.db.WithContext(ctx).Create(advisor).Error
}

func (r *advisorRepo) GetByID(ctx context.Context, id string) (*model.Advisor, error) {
	var advisor model.Advisor
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("advisor_id = ?", id).
		First(&advisor).Error
	if err != nil {
		return nil, err
	}
	return &advisor, nil
}

func (r *advisorRepo) GetByUserID(ctx context.Context, userID string) (*model.Advisor, error) {
	var advisor model.Advisor
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&advisor).Error
	if err != nil {
		return nil, err
	}
	return &advisor, nil
}

func (r *advisorRepo) List(ctx context.Context) ([]model.Advisor, error) {
	var advisors []model.Advisor
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at ASC").
		Find(&advisors).Error
	return advisors, err
}
