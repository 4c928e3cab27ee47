package dto

// ── 统计分析模块 DTO ──

// HeatCellResponse 热力图单元格
type HeatCellResponse struct {
	Day   string `json:"day"`
	Hour  int    `json:"hour"`
	Count int    `json:"count"`
}

// HeatmapResponse 课时密度热力图
type HeatmapResponse struct {
	Days  []string           `json:"days"`
	Hours []int              `json:"hours"`
	Cells []HeatCellResponse `json:"cells"`
	Peak  int                `json:"peak"`
}

// RoomUsageRequest 教室统计参数
type RoomUsageRequest struct {
	Top int `form:"top" binding:"omitempty,min=1,max=500"`
}

// RoomUsageResponse 教室使用情况
type RoomUsageResponse struct {
	Room     string `json:"room"`
	Sessions int    `json:"sessions"`
	Hours    string `json:"hours"` // 每周总课时，保留一位小数
}

// DeptCountResponse 院系课程数
type DeptCountResponse struct {
	Dept    string `json:"dept"`
	Courses int    `json:"courses"`
}
