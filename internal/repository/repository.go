package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Student     StudentRepository
	Advisor     AdvisorRepository
	Period      PeriodRepository
	Group       GroupRepository
	Project     ProjectRepository
	Document    DocumentRepository
	Observation ObservationRepository
	Correction  CorrectionRepository
	Proposal    ProposalRepository
	Meeting     MeetingRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Student:     NewStudentRepo(db),
		Advisor:     NewAdvisorRepo(db),
		Period:      NewPeriodRepo(db),
		Group:       NewGroupRepo(db),
		Project:     NewProjectRepo(db),
		Document:    NewDocumentRepo(db),
		Observation: NewObservationRepo(db),
		Correction:  NewCorrectionRepo(db),
		Proposal:    NewProposalRepo(db),
		Meeting:     NewMeetingRepo(db),
	}
}

// BeginTx 开启事务；测试中聚合未绑定 db 时返回 nil 事务，调用方需判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
