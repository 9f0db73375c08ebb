package dto

// ── 学期模块 DTO ──

// CreatePeriodRequest 创建学期请求
type CreatePeriodRequest struct {
	Name            string `json:"name"             binding:"required,min=2,max=100"`
	SemesterStart   string `json:"semester_start"   binding:"required"` // "2026-02-02"
	SemesterEnd     string `json:"semester_end"     binding:"required"` // "2026-06-30"
	EnrollmentStart string `json:"enrollment_start" binding:"required"`
	EnrollmentEnd   string `json:"enrollment_end"   binding:"required"`
}

// UpdatePeriodRequest 更新学期请求
type UpdatePeriodRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=2,max=100"`
	SemesterStart   *string `json:"semester_start"`
	SemesterEnd     *string `json:"semester_end"`
	EnrollmentStart *string `json:"enrollment_start"`
	EnrollmentEnd   *string `json:"enrollment_end"`
}

// PeriodResponse 学期信息响应
type PeriodResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SemesterStart   string `json:"semester_start"`
	SemesterEnd     string `json:"semester_end"`
	EnrollmentStart string `json:"enrollment_start"`
	EnrollmentEnd   string `json:"enrollment_end"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}
