package dto

// ── 答辩流程模块 DTO ──

// TribunalMember 答辩委员会成员
type TribunalMember struct {
	Name  string `json:"name"  binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// RequestDefenseRequest 学生发起答辩申请
type RequestDefenseRequest struct {
	MemorialPath string `json:"memorial_path" binding:"required,max=500"`
}

// RespondDefenseRequest 管理员答复答辩申请
// approved=true 时必须附 3–5 人答辩委员会
type RespondDefenseRequest struct {
	Approved bool             `json:"approved"`
	Comments string           `json:"comments" binding:"omitempty"`
	Tribunal []TribunalMember `json:"tribunal" binding:"omitempty,dive"`
}
