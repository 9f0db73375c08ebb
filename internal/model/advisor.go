package model

// Advisor 导师档案表 — 对应 advisors
type Advisor struct {
	AdvisorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"advisor_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	Degree    string `gorm:"type:varchar(100);not null;default:''"          json:"degree"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Advisor) TableName() string { return "advisors" }
