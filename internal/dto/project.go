package dto

// ── 项目模块 DTO ──

// CreateProjectRequest 学生创建项目请求（附带首个选题提案）
type CreateProjectRequest struct {
	Title string `json:"title" binding:"required,min=5,max=255"`
	Body  string `json:"body"  binding:"omitempty"`
}

// ProjectResponse 项目信息响应
type ProjectResponse struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Body               string           `json:"body"`
	Stage              string           `json:"stage"`
	AdvisorID          string           `json:"advisor_id,omitempty"`
	AdvisorName        string           `json:"advisor_name,omitempty"`
	Students           []UserResponse   `json:"students,omitempty"`
	ProposalApproved   bool             `json:"proposal_approved"`
	ProposalApprovedAt string           `json:"proposal_approved_at,omitempty"`
	ProposalComments   string           `json:"proposal_comments,omitempty"`
	ProfileApproved    bool             `json:"profile_approved"`
	ProfileApprovedAt  string           `json:"profile_approved_at,omitempty"`
	ProfileComments    string           `json:"profile_comments,omitempty"`
	ProjectApproved    bool             `json:"project_approved"`
	ProjectApprovedAt  string           `json:"project_approved_at,omitempty"`
	ProjectComments    string           `json:"project_comments,omitempty"`
	ReadyForDefense    bool             `json:"ready_for_defense"`
	MemorialPath       string           `json:"memorial_path,omitempty"`
	Tribunal           []TribunalMember `json:"tribunal,omitempty"`
	DefenseComments    string           `json:"defense_comments,omitempty"`
	CreatedAt          string           `json:"created_at"`
	UpdatedAt          string           `json:"updated_at"`
}

// ── 阶段推进 ──

// ApproveStageRequest 导师批准阶段请求
type ApproveStageRequest struct {
	Stage    string `json:"stage"    binding:"required,oneof=proposal profile project"`
	Comments string `json:"comments" binding:"omitempty"`
}

// ManageTopicRequest 导师处理选题提案请求
type ManageTopicRequest struct {
	ProposalID string `json:"proposal_id" binding:"required,uuid"`
	Action     string `json:"action"      binding:"required,oneof=approve reject"`
	Comments   string `json:"comments"    binding:"omitempty"`
}

// ── 文档 ──

// RegisterDocumentRequest 登记新文档版本请求
// 文件字节已由边界层写入对象存储，这里只登记元数据
type RegisterDocumentRequest struct {
	Stage string `json:"stage" binding:"required,oneof=proposal profile project"`
	Path  string `json:"path"  binding:"required,max=500"`
}

// DocumentResponse 文档信息响应
type DocumentResponse struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	Stage      string `json:"stage"`
	DocVersion int    `json:"doc_version"`
	Path       string `json:"path"`
	CreatedAt  string `json:"created_at"`
}

// ── 选题提案 ──

// CreateProposalRequest 学生提交选题提案请求
type CreateProposalRequest struct {
	Title string `json:"title" binding:"required,min=5,max=255"`
	Body  string `json:"body"  binding:"omitempty"`
}

// ProposalResponse 选题提案响应
type ProposalResponse struct {
	ID             string `json:"id"`
	ProjectID      string `json:"project_id"`
	StudentID      string `json:"student_id"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	Status         string `json:"status"`
	ReviewComments string `json:"review_comments,omitempty"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ── 指导会议 ──

// CreateMeetingRequest 导师排定会议请求
type CreateMeetingRequest struct {
	ProjectID   string `json:"project_id"   binding:"required,uuid"`
	Subject     string `json:"subject"      binding:"required,min=2,max=255"`
	ScheduledAt string `json:"scheduled_at" binding:"required"` // RFC3339
	DurationMin int    `json:"duration_min" binding:"omitempty,min=10,max=240"`
}

// UpdateMeetingRequest 更新会议状态请求
type UpdateMeetingRequest struct {
	Status string `json:"status" binding:"required,oneof=scheduled held cancelled"`
	Notes  string `json:"notes"  binding:"omitempty"`
}

// MeetingResponse 会议信息响应
type MeetingResponse struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	AdvisorID   string `json:"advisor_id"`
	Subject     string `json:"subject"`
	ScheduledAt string `json:"scheduled_at"`
	DurationMin int    `json:"duration_min"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
}
