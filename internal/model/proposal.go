package model

import "time"

// 选题提案状态
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

// Proposal 选题提案表 — 对应 proposals
// 同一项目批准一条提案时，其余 pending 提案自动置为 rejected
type Proposal struct {
	ProposalID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"proposal_id"`
	ProjectID      string     `gorm:"type:uuid;not null"                             json:"project_id"`
	StudentID      string     `gorm:"type:uuid;not null"                             json:"student_id"`
	Title          string     `gorm:"type:varchar(255);not null"                     json:"title"`
	Body           string     `gorm:"type:text;not null;default:''"                  json:"body"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ReviewComments string     `gorm:"type:text;not null;default:''"                  json:"review_comments"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Proposal) TableName() string { return "proposals" }
