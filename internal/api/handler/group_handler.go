package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/service"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/response"
)

// GroupHandler 小组与入组模块 HTTP 处理器
type GroupHandler struct {
	groupSvc      service.GroupService
	enrollmentSvc service.EnrollmentService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService, enrollmentSvc service.EnrollmentService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc, enrollmentSvc: enrollmentSvc}
}

// ── 小组管理 ──

// CreateGroup 创建小组（管理员）
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.Created(c, group)
}

// GetGroup 获取小组详情
// GET /api/v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	group, err := h.groupSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

// ListGroups 按学期获取小组列表
// GET /api/v1/groups?period_id=xxx
func (h *GroupHandler) ListGroups(c *gin.Context) {
	periodID := c.Query("period_id")
	if periodID == "" {
		response.BadRequest(c, 10001, "period_id 不能为空")
		return
	}

	groups, err := h.groupSvc.ListByPeriod(c.Request.Context(), periodID)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// ListMyGroups 导师获取自己带的小组
// GET /api/v1/groups/mine
func (h *GroupHandler) ListMyGroups(c *gin.Context) {
	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	groups, err := h.groupSvc.ListByAdvisor(c.Request.Context(), advisorID)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// ListMembers 获取小组成员
// GET /api/v1/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	members, err := h.groupSvc.ListMembers(c.Request.Context(), id)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": members})
}

// UpdateGroup 更新小组（管理员）
// PUT /api/v1/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	group, err := h.groupSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

// DeleteGroup 删除小组（管理员；有成员时拒绝）
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 入组 / 退组 ──

// Enroll 学生自助入组
// POST /api/v1/groups/:id/enroll
func (h *GroupHandler) Enroll(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Enroll(c.Request.Context(), studentID, groupID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// Withdraw 学生自助退组
// POST /api/v1/groups/:id/withdraw
func (h *GroupHandler) Withdraw(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Withdraw(c.Request.Context(), studentID, groupID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// AssignStudent 管理员指派学生入组
// POST /api/v1/groups/:id/students
func (h *GroupHandler) AssignStudent(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.AssignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.enrollmentSvc.Assign(c.Request.Context(), groupID, req.StudentID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// RemoveStudent 管理员将学生移出小组
// DELETE /api/v1/groups/:id/students/:student_id
func (h *GroupHandler) RemoveStudent(c *gin.Context) {
	groupID := c.Param("id")
	studentID := c.Param("student_id")
	if groupID == "" || studentID == "" {
		response.BadRequest(c, 10001, "参数不能为空")
		return
	}

	if err := h.enrollmentSvc.Remove(c.Request.Context(), groupID, studentID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleGroupError 统一处理小组与入组模块业务错误
func (h *GroupHandler) handleGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 14001, "小组不存在")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 13001, "学期不存在")
	case errors.Is(err, service.ErrAdvisorNotFound):
		response.NotFound(c, 14002, "导师不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14003, "学生不存在")
	case errors.Is(err, service.ErrGroupNotEmpty):
		response.Conflict(c, 14004, "小组仍有成员，不可删除")
	case errors.Is(err, service.ErrGroupInactive):
		response.UnprocessableEntity(c, 14005, "小组未激活或所属学期未激活")
	case errors.Is(err, service.ErrActiveGroupExists):
		response.Conflict(c, 14006, "学生已属于一个激活学期的小组")
	case errors.Is(err, service.ErrStageMismatch):
		response.UnprocessableEntity(c, 14007, "学生项目阶段与小组类型不匹配")
	case errors.Is(err, service.ErrOutOfWindow):
		response.UnprocessableEntity(c, 14008, "不在报名窗口内")
	case errors.Is(err, service.ErrNotGroupMember):
		response.NotFound(c, 14009, "学生不是该小组成员")
	case errors.Is(err, service.ErrPeriodDateInvalid):
		response.BadRequest(c, 13003, "日期格式不合法")
	default:
		response.InternalError(c)
	}
}
