package model

// Dataset 已导入的数据文件 — 对应 datasets
//
// SourceFile 即课程记录上的来源标签，删除数据集时按它级联删除课程记录。
type Dataset struct {
	DatasetID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SourceFile   string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"source_file"`
	RowCount     int    `gorm:"not null;default:0"                             json:"row_count"`     // 原始数据行数
	RecordCount  int    `gorm:"not null;default:0"                             json:"record_count"`  // 有效课程记录数
	DroppedCount int    `gorm:"not null;default:0"                             json:"dropped_count"` // 因课程代码无效被丢弃的行数
	BaseModel
}

// TableName 指定表名
func (Dataset) TableName() string { return "datasets" }
