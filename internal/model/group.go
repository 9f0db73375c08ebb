package model

import "time"

// 小组类型
const (
	GroupTypeWorkshopI  = "workshop_i"  // Taller I：perfil 尚未通过的学生
	GroupTypeWorkshopII = "workshop_ii" // Taller II：perfil 已通过的学生
)

// Group 小组表 — 对应 groups
// 有成员时不可删除
type Group struct {
	GroupID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name            string     `gorm:"type:varchar(100);not null"                     json:"name"`
	GroupType       string     `gorm:"type:varchar(20);not null"                      json:"group_type"`
	PeriodID        string     `gorm:"type:uuid;not null"                             json:"period_id"`
	AdvisorID       string     `gorm:"type:uuid;not null"                             json:"advisor_id"`
	IsActive        bool       `gorm:"not null;default:true"                          json:"is_active"`
	ProfileDeadline *time.Time `gorm:"type:date"                                      json:"profile_deadline,omitempty"`
	ProjectDeadline *time.Time `gorm:"type:date"                                      json:"project_deadline,omitempty"`
	VersionedModel

	// 关联
	Period   *Period   `gorm:"foreignKey:PeriodID;references:PeriodID"    json:"period,omitempty"`
	Advisor  *Advisor  `gorm:"foreignKey:AdvisorID;references:AdvisorID"  json:"advisor,omitempty"`
	Students []Student `gorm:"many2many:group_students;joinForeignKey:GroupID;joinReferences:StudentID" json:"students,omitempty"`
}

// TableName 指定表名
func (Group) TableName() string { return "groups" }
