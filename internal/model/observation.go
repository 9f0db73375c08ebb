package model

// 观察意见状态机的状态集合
const (
	ObservationPending   = "pending"
	ObservationInReview  = "in_review"
	ObservationCorrected = "corrected"
	ObservationApproved  = "approved" // 终态
	ObservationRejected  = "rejected"
)

// 观察意见作用域（标签式变体，而非可空外键的隐式语义）
const (
	ScopeDocument = "document" // 针对某一文档版本
	ScopeProject  = "project"  // 针对项目整体（二阶段的总体意见）
)

// Observation 观察意见表 — 对应 observations
// document 作用域时 document_id 必填；project 作用域时 document_id 为空
// 一条意见至多有一条有效更正
type Observation struct {
	ObservationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"observation_id"`
	Scope         string  `gorm:"type:varchar(20);not null"                      json:"scope"`
	ProjectID     string  `gorm:"type:uuid;not null"                             json:"project_id"`
	DocumentID    *string `gorm:"type:uuid"                                      json:"document_id,omitempty"`
	AdvisorID     string  `gorm:"type:uuid;not null"                             json:"advisor_id"`
	Title         string  `gorm:"type:varchar(255);not null"                     json:"title"`
	Body          string  `gorm:"type:text;not null;default:''"                  json:"body"`

	// 空间锚点：页码 + 包围盒
	Page      int     `gorm:"not null;default:0" json:"page"`
	BoxX      float64 `gorm:"not null;default:0" json:"box_x"`
	BoxY      float64 `gorm:"not null;default:0" json:"box_y"`
	BoxWidth  float64 `gorm:"not null;default:0" json:"box_width"`
	BoxHeight float64 `gorm:"not null;default:0" json:"box_height"`

	Status             string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	VerifyComments     string `gorm:"type:text;not null;default:''"               json:"verify_comments"`
	Archived           bool   `gorm:"not null;default:false"                      json:"archived"`
	RaisedInVersion    int    `gorm:"not null;default:0"                          json:"raised_in_version"`
	CorrectedInVersion *int   `json:"corrected_in_version,omitempty"`
	VersionedModel

	// 关联
	Document   *Document   `gorm:"foreignKey:DocumentID;references:DocumentID"          json:"document,omitempty"`
	Advisor    *Advisor    `gorm:"foreignKey:AdvisorID;references:AdvisorID"            json:"advisor,omitempty"`
	Correction *Correction `gorm:"foreignKey:ObservationID;references:ObservationID"    json:"correction,omitempty"`
}

// TableName 指定表名
func (Observation) TableName() string { return "observations" }
