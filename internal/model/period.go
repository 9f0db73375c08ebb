package model

import "time"

// Period 学期表 — 对应 periods
// 同一时刻至多一个学期 is_active=true，由 PeriodService.Activate 保证
type Period struct {
	PeriodID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	Name            string    `gorm:"type:varchar(100);not null"                     json:"name"`
	SemesterStart   time.Time `gorm:"type:date;not null"                             json:"semester_start"`
	SemesterEnd     time.Time `gorm:"type:date;not null"                             json:"semester_end"`
	EnrollmentStart time.Time `gorm:"type:date;not null"                             json:"enrollment_start"`
	EnrollmentEnd   time.Time `gorm:"type:date;not null"                             json:"enrollment_end"`
	IsActive        bool      `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Period) TableName() string { return "periods" }

// EnrollmentWindowContains 判断时刻 t 是否落在报名窗口内
// 窗口为 [enrollment_start 00:00, enrollment_end 23:59:59]
func (p *Period) EnrollmentWindowContains(t time.Time) bool {
	start := time.Date(p.EnrollmentStart.Year(), p.EnrollmentStart.Month(), p.EnrollmentStart.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(p.EnrollmentEnd.Year(), p.EnrollmentEnd.Month(), p.EnrollmentEnd.Day(), 23, 59, 59, 0, t.Location())
	return !t.Before(start) && !t.After(end)
}
