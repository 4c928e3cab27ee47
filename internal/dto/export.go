package dto

// ── 导出模块 DTO ──

// ICSExportRequest ICS 导出查询参数
type ICSExportRequest struct {
	WeekOf string `form:"week_of" binding:"omitempty,datetime=2006-01-02"`
}
