package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// CorrectionRepository 更正数据访问接口
type CorrectionRepository interface {
	Create(ctx context.Context, correction *model.Correction) error
	GetByID(ctx context.Context, id string) (*model.Correction, error)
	GetByObservation(ctx context.Context, observationID string) (*model.Correction, error)
	Delete(ctx context.Context, id string) error
}

type correctionRepo struct {
	db *gorm.DB
}

// NewCorrectionRepo 创建 CorrectionRepository 实例
func NewCorrectionRepo(db *gorm.DB) CorrectionRepository {
	return &correctionRepo{db: db}
}

func (r *correctionRepo) Create(ctx context.Context, correction *model.Correction) error {
	return r.db.WithContext(ctx).Create(correction).Error
}

func (r *correctionRepo) GetByID(ctx context.Context, id string) (*model.Correction, error) {
	var correction model.Correction
	err := r.db.WithContext(ctx).
		Where("correction_id = ?", id).
		First(&correction).Error
	if err != nil {
		return nil, err
	}
	return &correction, nil
}

func (r *correctionRepo) GetByObservation(ctx context.Context, observationID string) (*model.Correction, error) {
	var correction model.Correction
	err := r.db.WithContext(ctx).
		Where("observation_id = ?", observationID).
		First(&correction).Error
	if err != nil {
		return nil, err
	}
	return &correction, nil
}

// Delete 物理删除：更正没有软删除语义，删除即回退观察意见状态
func (r *correctionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("correction_id = ?", id).
		Delete(&model.Correction{}).Error
}
