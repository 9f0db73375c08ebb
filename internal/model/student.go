package model

// Student 学生档案表 — 对应 students
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	Career    string `gorm:"type:varchar(100);not null;default:''"          json:"career"`
	VersionedModel

	// 关联
	User     *User     `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Groups   []Group   `gorm:"many2many:group_students;joinForeignKey:StudentID;joinReferences:GroupID" json:"groups,omitempty"`
	Projects []Project `gorm:"many2many:project_students;joinForeignKey:StudentID;joinReferences:ProjectID" json:"projects,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
