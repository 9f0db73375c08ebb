package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// ProposalRepository 选题提案数据访问接口
type ProposalRepository interface {
	Create(ctx context.Context, proposal *model.Proposal) error
	GetByID(ctx context.Context, id string) (*model.Proposal, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Proposal, error)
	Update(ctx context.Context, proposal *model.Proposal) error
	// RejectOtherPending 将项目内除 exceptID 外的全部 pending 提案置为 rejected
	RejectOtherPending(ctx context.Context, projectID, exceptID string) error
}

type proposalRepo struct {
	db *gorm.DB
}

// NewProposalRepo 创建 ProposalRepository 实例
func NewProposalRepo(db *gorm.DB) ProposalRepository {
	return &proposalRepo{db: db}
}

func (r *proposalRepo) Create(ctx context.Context, proposal *model.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *proposalRepo) GetByID(ctx context.Context, id string) (*model.Proposal, error) {
	var proposal model.Proposal
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", id).
		First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepo) ListByProject(ctx context.Context, projectID string) ([]model.Proposal, error) {
	var proposals []model.Proposal
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepo) Update(ctx context.Context, proposal *model.Proposal) error {
	return r.db.WithContext(ctx).Save(proposal).Error
}

func (r *proposalRepo) RejectOtherPending(ctx context.Context, projectID, exceptID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Proposal{}).
		Where("project_id = ? AND proposal_id <> ? AND status = ?",
			projectID, exceptID, model.ProposalPending).
		Updates(map[string]interface{}{
			"status":      model.ProposalRejected,
			"reviewed_at": gorm.Expr("NOW()"),
		}).Error
}
