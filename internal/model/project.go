package model

import "time"

// 项目阶段（只能沿声明的边推进，拒绝路径除外）
const (
	StageProposal         = "proposal"
	StageProfile          = "profile"
	StageProject          = "project"
	StageReadyForDefense  = "ready_for_defense"
	StageDefenseRequested = "defense_requested"
	StageFinished         = "finished"
)

// StageRank 阶段在生命周期中的序号，用于"不可跳级/不可回退"判断
// 未知阶段返回 -1
func StageRank(stage string) int {
	switch stage {
	case StageProposal:
		return 0
	case StageProfile:
		return 1
	case StageProject:
		return 2
	case StageReadyForDefense:
		return 3
	case StageDefenseRequested:
		return 4
	case StageFinished:
		return 5
	default:
		return -1
	}
}

// Project 毕业项目表 — 对应 projects
// 每个已关闭阶段各有一组 审批标志/时间/评语；答辩字段在答辩流程中写入
type Project struct {
	ProjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	Title     string `gorm:"type:varchar(255);not null"                     json:"title"`
	Body      string `gorm:"type:text;not null;default:''"                  json:"body"`
	Stage     string `gorm:"type:varchar(30);not null;default:'proposal'"   json:"stage"`
	AdvisorID *string `gorm:"type:uuid"                                     json:"advisor_id,omitempty"`

	ProposalApproved   bool       `gorm:"not null;default:false"        json:"proposal_approved"`
	ProposalApprovedAt *time.Time `json:"proposal_approved_at,omitempty"`
	ProposalComments   string     `gorm:"type:text;not null;default:''" json:"proposal_comments"`

	ProfileApproved   bool       `gorm:"not null;default:false"        json:"profile_approved"`
	ProfileApprovedAt *time.Time `json:"profile_approved_at,omitempty"`
	ProfileComments   string     `gorm:"type:text;not null;default:''" json:"profile_comments"`

	ProjectApproved   bool       `gorm:"not null;default:false"        json:"project_approved"`
	ProjectApprovedAt *time.Time `json:"project_approved_at,omitempty"`
	ProjectComments   string     `gorm:"type:text;not null;default:''" json:"project_comments"`

	ReadyForDefense    bool         `gorm:"not null;default:false"         json:"ready_for_defense"`
	MemorialPath       string       `gorm:"type:varchar(500);not null;default:''" json:"memorial_path"`
	Tribunal           TribunalList `gorm:"type:jsonb"                     json:"tribunal,omitempty"`
	DefenseComments    string       `gorm:"type:text;not null;default:''"  json:"defense_comments"`
	DefenseRequestedAt *time.Time   `json:"defense_requested_at,omitempty"`

	VersionedModel

	// 关联
	Advisor   *Advisor   `gorm:"foreignKey:AdvisorID;references:AdvisorID" json:"advisor,omitempty"`
	Students  []Student  `gorm:"many2many:project_students;joinForeignKey:ProjectID;joinReferences:StudentID" json:"students,omitempty"`
	Documents []Document `gorm:"foreignKey:ProjectID;references:ProjectID" json:"documents,omitempty"`
	Proposals []Proposal `gorm:"foreignKey:ProjectID;references:ProjectID" json:"proposals,omitempty"`
	Meetings  []Meeting  `gorm:"foreignKey:ProjectID;references:ProjectID" json:"meetings,omitempty"`
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }

// HasStudent 判断学生是否属于本项目（需预加载 Students）
func (p *Project) HasStudent(studentID string) bool {
	for i := range p.Students {
		if p.Students[i].StudentID == studentID {
			return true
		}
	}
	return false
}
