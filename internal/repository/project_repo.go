package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
	pkgerrors "github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/errors"
)

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// GetActiveByStudent 返回学生当前的未完结项目
	GetActiveByStudent(ctx context.Context, studentID string) (*model.Project, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]model.Project, error)
	ListByPeriodGroups(ctx context.Context, periodID string) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	AddStudent(ctx context.Context, projectID, studentID string) error
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("Advisor").
		Preload("Students").
		Where("project_id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) GetActiveByStudent(ctx context.Context, studentID string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_students ps ON ps.project_id = projects.project_id").
		Where("ps.student_id = ? AND projects.stage <> ?", studentID, model.StageFinished).
		Preload("Students").
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) ListByAdvisor(ctx context.Context, advisorID string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("Students").
		Where("advisor_id = ?", advisorID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// ListByPeriodGroups 列出某学期各小组成员名下的全部项目（用于学期进度导出）
func (r *projectRepo) ListByPeriodGroups(ctx context.Context, periodID string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Distinct("projects.*").
		Joins("JOIN project_students ps ON ps.project_id = projects.project_id").
		Joins("JOIN group_students gs ON gs.student_id = ps.student_id").
		Joins("JOIN groups g ON g.group_id = gs.group_id").
		Where("g.period_id = ?", periodID).
		Preload("Advisor").
		Preload("Students").
		Find(&projects).Error
	return projects, err
}

// Update 带乐观锁的更新：阶段推进与答辩答复存在导师/管理员并发写入的可能，
// version 不匹配时拒绝写入
func (r *projectRepo) Update(ctx context.Context, project *model.Project) error {
	oldVersion := project.Version
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("project_id = ? AND version = ?", project.ProjectID, oldVersion).
		Updates(map[string]interface{}{
			"title":                project.Title,
			"body":                 project.Body,
			"stage":                project.Stage,
			"advisor_id":           project.AdvisorID,
			"proposal_approved":    project.ProposalApproved,
			"proposal_approved_at": project.ProposalApprovedAt,
			"proposal_comments":    project.ProposalComments,
			"profile_approved":     project.ProfileApproved,
			"profile_approved_at":  project.ProfileApprovedAt,
			"profile_comments":     project.ProfileComments,
			"project_approved":     project.ProjectApproved,
			"project_approved_at":  project.ProjectApprovedAt,
			"project_comments":     project.ProjectComments,
			"ready_for_defense":    project.ReadyForDefense,
			"memorial_path":        project.MemorialPath,
			"tribunal":             project.Tribunal,
			"defense_comments":     project.DefenseComments,
			"defense_requested_at": project.DefenseRequestedAt,
			"updated_by":           project.UpdatedBy,
			"version":              oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	project.Version = oldVersion + 1
	return nil
}

func (r *projectRepo) AddStudent(ctx context.Context, projectID, studentID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO project_students (project_id, student_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			projectID, studentID).Error
}
