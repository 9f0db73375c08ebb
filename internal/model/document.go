package model

// Document 文档表 — 对应 documents
// 文档创建后不可变：新上传产生新版本记录，doc_version 在项目内单调递增
// 字节内容存于外部对象存储，这里只登记路径
type Document struct {
	DocumentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"document_id"`
	ProjectID  string `gorm:"type:uuid;not null"                             json:"project_id"`
	Stage      string `gorm:"type:varchar(30);not null"                      json:"stage"`
	DocVersion int    `gorm:"not null"                                       json:"doc_version"`
	Path       string `gorm:"type:varchar(500);not null"                     json:"path"`
	BaseModel

	// 关联
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
}

// TableName 指定表名
func (Document) TableName() string { return "documents" }
