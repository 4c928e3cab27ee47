package dto

// ── 共同空闲时间模块 DTO ──

// AvailabilityRequest 共同空闲时间计算请求
// People 与 GroupID 至少提供一个；两者同时提供时取并集
type AvailabilityRequest struct {
	People  []string `json:"people"   binding:"omitempty,max=100,dive,max=200"`
	GroupID string   `json:"group_id" binding:"omitempty,uuid"`
}

// WindowResponse 计算窗口
type WindowResponse struct {
	Days      []string `json:"days"`
	StartHour int      `json:"start_hour"`
	EndHour   int      `json:"end_hour"`
}

// MatrixCellResponse 矩阵中的一格
type MatrixCellResponse struct {
	Hour      int      `json:"hour"`
	Busy      bool     `json:"busy"`
	Occupants []string `json:"occupants"`
}

// MatrixRowResponse 矩阵中的一天
type MatrixRowResponse struct {
	Day   string               `json:"day"`
	Cells []MatrixCellResponse `json:"cells"`
}

// FreeSlotResponse 空闲时间段
type FreeSlotResponse struct {
	Day   string `json:"day"`
	Start string `json:"start"` // "10:00"
	End   string `json:"end"`   // "11:00"
}

// AvailabilityResponse 共同空闲时间计算结果
type AvailabilityResponse struct {
	Window   WindowResponse      `json:"window"`
	Selected []string            `json:"selected"`
	Matrix   []MatrixRowResponse `json:"matrix"`
	Free     []FreeSlotResponse  `json:"free"`
	Ranges   []FreeSlotResponse  `json:"ranges"` // 相邻空闲小时合并后的区间
}

// InstructorSearchRequest 教师名录检索参数
type InstructorSearchRequest struct {
	Q string `form:"q" binding:"omitempty,max=100"`
}

// ── 会议人员组 ──

// CreateGroupRequest 创建人员组请求
type CreateGroupRequest struct {
	Name    string   `json:"name"    binding:"required,min=1,max=100"`
	Members []string `json:"members" binding:"required,min=2,max=100,dive,required,max=200"`
}

// UpdateGroupRequest 更新人员组请求
// Version 非 0 时用于乐观锁校验
type UpdateGroupRequest struct {
	Name    *string  `json:"name"    binding:"omitempty,min=1,max=100"`
	Members []string `json:"members" binding:"omitempty,min=2,max=100,dive,required,max=200"`
	Version int      `json:"version" binding:"omitempty,min=1"`
}

// GroupResponse 人员组响应
type GroupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	Version   int      `json:"version"`
	UpdatedAt string   `json:"updated_at"`
}
