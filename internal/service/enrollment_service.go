package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/repository"
)

// ── 入组模块业务错误 ──

var (
	ErrStudentNotFound   = errors.New("学生不存在")
	ErrGroupInactive     = errors.New("小组未激活或所属学期未激活")
	ErrActiveGroupExists = errors.New("学生已属于一个激活学期的小组")
	ErrStageMismatch     = errors.New("学生项目阶段与小组类型不匹配")
	ErrOutOfWindow       = errors.New("不在报名窗口内")
	ErrNotGroupMember    = errors.New("学生不是该小组成员")
)

// EnrollmentService 入组业务接口
// 不变量：任一时刻学生至多属于一个激活学期的小组
type EnrollmentService interface {
	// Enroll 学生自助入组，受报名窗口约束
	Enroll(ctx context.Context, studentID, groupID string) error
	// Withdraw 学生自助退组
	Withdraw(ctx context.Context, studentID, groupID string) error
	// Assign 管理员指派入组，不受报名窗口约束
	Assign(ctx context.Context, groupID, studentID string) error
	// Remove 管理员将学生移出小组
	Remove(ctx context.Context, groupID, studentID string) error
	// ForceWithdrawActive 将学生移出其当前激活小组；无组时为空操作
	ForceWithdrawActive(ctx context.Context, studentID string) error
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger, now: time.Now}
}

func (s *enrollmentService) Enroll(ctx context.Context, studentID, groupID string) error {
	return s.enroll(ctx, studentID, groupID, true)
}

func (s *enrollmentService) Assign(ctx context.Context, groupID, studentID string) error {
	return s.enroll(ctx, studentID, groupID, false)
}

// enroll 入组的公共路径；checkWindow 决定是否校验报名窗口
func (s *enrollmentService) enroll(ctx context.Context, studentID, groupID string, checkWindow bool) error {
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return err
	}

	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return err
	}
	if !group.IsActive {
		return ErrGroupInactive
	}

	period, err := s.repo.Period.GetByID(ctx, group.PeriodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return err
	}
	if !period.IsActive {
		return ErrGroupInactive
	}
	if checkWindow && !period.EnrollmentWindowContains(s.now()) {
		return ErrOutOfWindow
	}

	// 排他性：激活学期内至多一组
	if _, err := s.repo.Group.ActiveGroupOfStudent(ctx, studentID); err == nil {
		return ErrActiveGroupExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生当前小组失败", zap.Error(err))
		return err
	}

	project, err := s.activeProjectOf(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.checkStageFit(group, project); err != nil {
		return err
	}

	if err := s.repo.Group.AddStudent(ctx, groupID, studentID); err != nil {
		s.logger.Error("学生入组失败", zap.Error(err))
		return err
	}

	// Taller II 入组副作用：小组导师接手项目，阶段落后时补推进
	if group.GroupType == model.GroupTypeWorkshopII && project != nil {
		changed := false
		if project.AdvisorID == nil || *project.AdvisorID != group.AdvisorID {
			advisorID := group.AdvisorID
			project.AdvisorID = &advisorID
			changed = true
		}
		if model.StageRank(project.Stage) < model.StageRank(model.StageProject) {
			project.Stage = model.StageProject
			changed = true
		}
		if changed {
			if err := s.repo.Project.Update(ctx, project); err != nil {
				s.logger.Error("更新项目导师失败", zap.Error(err))
				return err
			}
		}
	}

	s.logger.Info("学生已入组",
		zap.String("student_id", studentID),
		zap.String("group_id", groupID),
		zap.String("group_type", group.GroupType))
	return nil
}

// Withdraw 自助退组与自助入组受同一报名窗口约束；窗口外只能由管理员移出
func (s *enrollmentService) Withdraw(ctx context.Context, studentID, groupID string) error {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return err
	}

	period, err := s.repo.Period.GetByID(ctx, group.PeriodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return err
	}
	if !period.EnrollmentWindowContains(s.now()) {
		return ErrOutOfWindow
	}

	return s.Remove(ctx, groupID, studentID)
}

func (s *enrollmentService) Remove(ctx context.Context, groupID, studentID string) error {
	if _, err := s.repo.Group.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return err
	}

	member, err := s.repo.Group.HasStudent(ctx, groupID, studentID)
	if err != nil {
		s.logger.Error("查询小组成员失败", zap.Error(err))
		return err
	}
	if !member {
		return ErrNotGroupMember
	}

	if err := s.repo.Group.RemoveStudent(ctx, groupID, studentID); err != nil {
		s.logger.Error("学生退组失败", zap.Error(err))
		return err
	}

	s.logger.Info("学生已退组",
		zap.String("student_id", studentID),
		zap.String("group_id", groupID))
	return nil
}

// ForceWithdrawActive 幂等：学生不在任何激活小组时直接返回 nil
func (s *enrollmentService) ForceWithdrawActive(ctx context.Context, studentID string) error {
	group, err := s.repo.Group.ActiveGroupOfStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询学生当前小组失败", zap.Error(err))
		return err
	}
	return s.repo.Group.RemoveStudent(ctx, group.GroupID, studentID)
}

// ── 内部辅助方法 ──

func (s *enrollmentService) activeProjectOf(ctx context.Context, studentID string) (*model.Project, error) {
	project, err := s.repo.Project.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询学生项目失败", zap.Error(err))
		return nil, err
	}
	return project, nil
}

// checkStageFit 小组类型与项目进度的匹配规则：
// Taller I 面向 perfil 未通过的学生；Taller II 要求 perfil 已通过
func (s *enrollmentService) checkStageFit(group *model.Group, project *model.Project) error {
	switch group.GroupType {
	case model.GroupTypeWorkshopI:
		if project != nil && project.ProfileApproved {
			return ErrStageMismatch
		}
	case model.GroupTypeWorkshopII:
		if project == nil || !project.ProfileApproved {
			return ErrStageMismatch
		}
	}
	return nil
}
