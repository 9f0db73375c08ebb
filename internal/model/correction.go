package model

// Correction 更正表 — 对应 corrections
// observation_id 唯一：一条观察意见至多一条更正
type Correction struct {
	CorrectionID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"correction_id"`
	ObservationID string `gorm:"type:uuid;not null;uniqueIndex"                 json:"observation_id"`
	StudentID     string `gorm:"type:uuid;not null"                             json:"student_id"`
	DocumentID    string `gorm:"type:uuid;not null"                             json:"document_id"`
	Body          string `gorm:"type:text;not null;default:''"                  json:"body"`
	BaseModel

	// 关联
	Student  *Student  `gorm:"foreignKey:StudentID;references:StudentID"    json:"student,omitempty"`
	Document *Document `gorm:"foreignKey:DocumentID;references:DocumentID"  json:"document,omitempty"`
}

// TableName 指定表名
func (Correction) TableName() string { return "corrections" }
