package dto

// ── 小组模块 DTO ──

// CreateGroupRequest 创建小组请求
type CreateGroupRequest struct {
	Name            string  `json:"name"             binding:"required,min=2,max=100"`
	GroupType       string  `json:"group_type"       binding:"required,oneof=workshop_i workshop_ii"`
	PeriodID        string  `json:"period_id"        binding:"required,uuid"`
	AdvisorID       string  `json:"advisor_id"       binding:"required,uuid"`
	ProfileDeadline *string `json:"profile_deadline"` // "2026-05-15"
	ProjectDeadline *string `json:"project_deadline"`
}

// UpdateGroupRequest 更新小组请求
type UpdateGroupRequest struct {
	Name            *string `json:"name"      binding:"omitempty,min=2,max=100"`
	IsActive        *bool   `json:"is_active"`
	ProfileDeadline *string `json:"profile_deadline"`
	ProjectDeadline *string `json:"project_deadline"`
}

// AssignStudentRequest 管理员指派学生入组请求
type AssignStudentRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// GroupResponse 小组信息响应
type GroupResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	GroupType       string  `json:"group_type"`
	PeriodID        string  `json:"period_id"`
	AdvisorID       string  `json:"advisor_id"`
	AdvisorName     string  `json:"advisor_name,omitempty"`
	IsActive        bool    `json:"is_active"`
	ProfileDeadline *string `json:"profile_deadline,omitempty"`
	ProjectDeadline *string `json:"project_deadline,omitempty"`
	StudentCount    int     `json:"student_count"`
	CreatedAt       string  `json:"created_at"`
}

// GroupMemberResponse 小组成员响应
type GroupMemberResponse struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Career    string `json:"career"`
}
