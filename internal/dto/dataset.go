package dto

// ── 数据集模块 DTO ──

// DatasetResponse 数据集信息响应
type DatasetResponse struct {
	ID           string `json:"id"`
	SourceFile   string `json:"source_file"`
	RowCount     int    `json:"row_count"`
	RecordCount  int    `json:"record_count"`
	DroppedCount int    `json:"dropped_count"`
	CreatedAt    string `json:"created_at"`
}

// ImportResponse 导入结果
type ImportResponse struct {
	Dataset        DatasetResponse `json:"dataset"`
	UnknownHeaders []string        `json:"unknown_headers"`
}

// ClearResponse 清空结果
type ClearResponse struct {
	Deleted int64 `json:"deleted"`
}
