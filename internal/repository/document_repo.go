package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// DocumentRepository 文档数据访问接口
// 文档不可变：只有 Create，新版本即新记录
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Document, error)
	// MaxVersion 返回项目当前最大文档版本号，无文档时返回 0
	MaxVersion(ctx context.Context, projectID string) (int, error)
	CountByProjectStage(ctx context.Context, projectID, stage string) (int64, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo 创建 DocumentRepository 实例
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListByProject(ctx context.Context, projectID string) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("doc_version ASC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) MaxVersion(ctx context.Context, projectID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(doc_version), 0)").
		Scan(&max).Error
	return max, err
}

func (r *documentRepo) CountByProjectStage(ctx context.Context, projectID, stage string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("project_id = ? AND stage = ?", projectID, stage).
		Count(&n).Error
	return n, err
}
