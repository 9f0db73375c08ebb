package model

import "time"

// 会议状态
const (
	MeetingScheduled = "scheduled"
	MeetingHeld      = "held"
	MeetingCancelled = "cancelled"
)

// Meeting 指导会议表 — 对应 meetings
type Meeting struct {
	MeetingID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"meeting_id"`
	ProjectID   string    `gorm:"type:uuid;not null"                             json:"project_id"`
	AdvisorID   string    `gorm:"type:uuid;not null"                             json:"advisor_id"`
	Subject     string    `gorm:"type:varchar(255);not null"                     json:"subject"`
	ScheduledAt time.Time `gorm:"not null"                                       json:"scheduled_at"`
	DurationMin int       `gorm:"not null;default:30"                            json:"duration_min"`
	Status      string    `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	Notes       string    `gorm:"type:text;not null;default:''"                  json:"notes"`
	BaseModel

	// 关联
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	Advisor *Advisor `gorm:"foreignKey:AdvisorID;references:AdvisorID" json:"advisor,omitempty"`
}

// TableName 指定表名
func (Meeting) TableName() string { return "meetings" }
