package dto

// ── 评审循环模块 DTO ──

// CreateObservationRequest 导师创建观察意见请求
// scope=document 时 document_id 必填；scope=project 时忽略 document_id 与空间锚点
type CreateObservationRequest struct {
	Scope      string  `json:"scope"       binding:"required,oneof=document project"`
	DocumentID string  `json:"document_id" binding:"omitempty,uuid"`
	Title      string  `json:"title"       binding:"required,min=2,max=255"`
	Body       string  `json:"body"        binding:"omitempty"`
	Page       int     `json:"page"        binding:"omitempty,min=0"`
	BoxX       float64 `json:"box_x"`
	BoxY       float64 `json:"box_y"`
	BoxWidth   float64 `json:"box_width"   binding:"omitempty,min=0"`
	BoxHeight  float64 `json:"box_height"  binding:"omitempty,min=0"`
}

// ObservationResponse 观察意见响应
type ObservationResponse struct {
	ID                 string              `json:"id"`
	Scope              string              `json:"scope"`
	ProjectID          string              `json:"project_id"`
	DocumentID         string              `json:"document_id,omitempty"`
	AdvisorID          string              `json:"advisor_id"`
	Title              string              `json:"title"`
	Body               string              `json:"body"`
	Page               int                 `json:"page"`
	BoxX               float64             `json:"box_x"`
	BoxY               float64             `json:"box_y"`
	BoxWidth           float64             `json:"box_width"`
	BoxHeight          float64             `json:"box_height"`
	Status             string              `json:"status"`
	Archived           bool                `json:"archived"`
	RaisedInVersion    int                 `json:"raised_in_version"`
	CorrectedInVersion *int                `json:"corrected_in_version,omitempty"`
	Correction         *CorrectionResponse `json:"correction,omitempty"`
	CreatedAt          string              `json:"created_at"`
}

// CreateCorrectionRequest 学生提交更正请求
type CreateCorrectionRequest struct {
	DocumentID string `json:"document_id" binding:"required,uuid"` // 更正所在的文档版本
	Body       string `json:"body"        binding:"omitempty"`
}

// CorrectionResponse 更正响应
type CorrectionResponse struct {
	ID            string `json:"id"`
	ObservationID string `json:"observation_id"`
	StudentID     string `json:"student_id"`
	DocumentID    string `json:"document_id"`
	Body          string `json:"body,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// VerifyCorrectionRequest 导师核验更正请求
type VerifyCorrectionRequest struct {
	Result   string `json:"result"   binding:"required,oneof=accepted rejected"`
	Comments string `json:"comments" binding:"omitempty"`
}
