package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
	pkgerrors "github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/errors"
)

// ObservationRepository 观察意见数据访问接口
type ObservationRepository interface {
	Create(ctx context.Context, obs *model.Observation) error
	GetByID(ctx context.Context, id string) (*model.Observation, error)
	ListByProject(ctx context.Context, projectID string, includeArchived bool) ([]model.Observation, error)
	ListByDocument(ctx context.Context, documentID string) ([]model.Observation, error)
	Update(ctx context.Context, obs *model.Observation) error
	// CountPendingByStage 统计项目在某阶段下未归档、状态为 pending/rejected 的意见数。
	// document 作用域的意见按其文档所属阶段归类；project 作用域的意见计入 project 阶段。
	CountPendingByStage(ctx context.Context, projectID, stage string) (int64, error)
}

type observationRepo struct {
	db *gorm.DB
}

// NewObservationRepo 创建 ObservationRepository 实例
func NewObservationRepo(db *gorm.DB) ObservationRepository {
	return &observationRepo{db: db}
}

func (r *observationRepo) Create(ctx context.Context, obs *model.Observation) error {
	return r.db.WithContext(ctx).Create(obs).Error
}

func (r *observationRepo) GetByID(ctx context.Context, id string) (*model.Observation, error) {
	var obs model.Observation
	err := r.db.WithContext(ctx).
		Preload("Correction").
		Preload("Document").
		Where("observation_id = ?", id).
		First(&obs).Error
	if err != nil {
		return nil, err
	}
	return &obs, nil
}

func (r *observationRepo) ListByProject(ctx context.Context, projectID string, includeArchived bool) ([]model.Observation, error) {
	db := r.db.WithContext(ctx).
		Preload("Correction").
		Where("project_id = ?", projectID)
	if !includeArchived {
		db = db.Where("archived = ?", false)
	}

	var list []model.Observation
	err := db.Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *observationRepo) ListByDocument(ctx context.Context, documentID string) ([]model.Observation, error) {
	var list []model.Observation
	err := r.db.WithContext(ctx).
		Preload("Correction").
		Where("document_id = ?", documentID).
		Order("page ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

// Update 带乐观锁的更新：version 不匹配说明意见已被并发修改
func (r *observationRepo) Update(ctx context.Context, obs *model.Observation) error {
	oldVersion := obs.Version
	result := r.db.WithContext(ctx).
		Model(&model.Observation{}).
		Where("observation_id = ? AND version = ?", obs.ObservationID, oldVersion).
		Updates(map[string]interface{}{
			"status":               obs.Status,
			"verify_comments":      obs.VerifyComments,
			"archived":             obs.Archived,
			"corrected_in_version": obs.CorrectedInVersion,
			"updated_by":           obs.UpdatedBy,
			"version":              oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	obs.Version = oldVersion + 1
	return nil
}

func (r *observationRepo) CountPendingByStage(ctx context.Context, projectID, stage string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Observation{}).
		Joins("LEFT JOIN documents d ON d.document_id = observations.document_id").
		Where("observations.project_id = ?", projectID).
		Where("observations.archived = ?", false).
		Where("observations.status IN ?", []string{model.ObservationPending, model.ObservationRejected}).
		Where("(observations.scope = ? AND d.stage = ?) OR (observations.scope = ? AND ? = ?)",
			model.ScopeDocument, stage, model.ScopeProject, stage, model.StageProject).
		Count(&n).Error
	return n, err
}
