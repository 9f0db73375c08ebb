package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// MeetingRepository 指导会议数据访问接口
type MeetingRepository interface {
	Create(ctx context.Context, meeting *model.Meeting) error
	GetByID(ctx context.Context, id string) (*model.Meeting, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Meeting, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]model.Meeting, error)
	Update(ctx context.Context, meeting *model.Meeting) error
}

type meetingRepo struct {
	db *gorm.DB
}

// NewMeetingRepo 创建 MeetingRepository 实例
func NewMeetingRepo(db *gorm.DB) MeetingRepository {
	return &meetingRepo{db: db}
}

func (r *meetingRepo) Create(ctx context.Context, meeting *model.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *meetingRepo) GetByID(ctx context.Context, id string) (*model.Meeting, error) {
	var meeting model.Meeting
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", id).
		First(&meeting).Error
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *meetingRepo) ListByProject(ctx context.Context, projectID string) ([]model.Meeting, error) {
	var meetings []model.Meeting
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("scheduled_at ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *meetingRepo) ListByAdvisor(ctx context.Context, advisorID string) ([]model.Meeting, error) {
	var meetings []model.Meeting
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("advisor_id = ?", advisorID).
		Order("scheduled_at ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *meetingRepo) Update(ctx context.Context, meeting *model.Meeting) error {
	return r.db.WithContext(ctx).Save(meeting).Error
}
