package model

// MeetingGroup 常用约会人员分组表 — 对应 meeting_groups
type MeetingGroup struct {
	GroupID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name    string      `gorm:"type:varchar(100);not null"                     json:"name"`
	Members StringArray `gorm:"type:text[];not null"                           json:"members"`
	VersionedModel
}

// TableName 指定表名
func (MeetingGroup) TableName() string { return "meeting_groups" }
