package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// GroupRepository 小组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	ListByPeriod(ctx context.Context, periodID string) ([]model.Group, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]model.Group, error)
	Update(ctx context.Context, group *model.Group) error
	Delete(ctx context.Context, id string, deletedBy string) error

	AddStudent(ctx context.Context, groupID, studentID string) error
	RemoveStudent(ctx context.Context, groupID, studentID string) error
	HasStudent(ctx context.Context, groupID, studentID string) (bool, error)
	CountStudents(ctx context.Context, groupID string) (int64, error)
	ListStudents(ctx context.Context, groupID string) ([]model.Student, error)
	// ActiveGroupOfStudent 返回学生当前所属、且学期处于激活状态的小组
	ActiveGroupOfStudent(ctx context.Context, studentID string) (*model.Group, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Preload("Period").
		Preload("Advisor").
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Preload("Advisor").
		Where("period_id = ?", periodID).
		Order("created_at ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) ListByAdvisor(ctx context.Context, advisorID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Preload("Period").
		Where("advisor_id = ?", advisorID).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) Update(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("group_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *groupRepo) AddStudent(ctx context.Context, groupID, studentID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO group_students (group_id, student_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			groupID, studentID).Error
}

func (r *groupRepo) RemoveStudent(ctx context.Context, groupID, studentID string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM group_students WHERE group_id = ? AND student_id = ?",
			groupID, studentID).Error
}

func (r *groupRepo) HasStudent(ctx context.Context, groupID, studentID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("group_students").
		Where("group_id = ? AND student_id = ?", groupID, studentID).
		Count(&n).Error
	return n > 0, err
}

func (r *groupRepo) CountStudents(ctx context.Context, groupID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("group_students").
		Where("group_id = ?", groupID).
		Count(&n).Error
	return n, err
}

func (r *groupRepo) ListStudents(ctx context.Context, groupID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN group_students gs ON gs.student_id = students.student_id").
		Where("gs.group_id = ?", groupID).
		Preload("User").
		Find(&students).Error
	return students, err
}

func (r *groupRepo) ActiveGroupOfStudent(ctx context.Context, studentID string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_students gs ON gs.group_id = groups.group_id").
		Joins("JOIN periods p ON p.period_id = groups.period_id").
		Where("gs.student_id = ? AND p.is_active = ?", studentID, true).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}
