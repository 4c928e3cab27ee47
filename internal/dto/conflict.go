package dto

// ── 冲突检测模块 DTO ──

// ConflictListRequest 冲突查询参数
type ConflictListRequest struct {
	Kind string `form:"kind" binding:"omitempty,oneof=INSTRUCTOR ROOM instructor room"`
}

// OccurrenceResponse 冲突一方的时段信息
type OccurrenceResponse struct {
	RecordID   string       `json:"record_id"`
	CourseCode string       `json:"course_code"`
	Instructor string       `json:"instructor"`
	Room       string       `json:"room"`
	SourceFile string       `json:"source_file"`
	Slot       SlotResponse `json:"slot"`
}

// ConflictResponse 单条冲突
type ConflictResponse struct {
	Kind   string             `json:"kind"`
	Entity string             `json:"entity"`
	Source OccurrenceResponse `json:"source"`
	Target OccurrenceResponse `json:"target"`
}

// ConflictListResponse 冲突列表与按类型统计
type ConflictListResponse struct {
	List   []ConflictResponse `json:"list"`
	Counts map[string]int     `json:"counts"`
	Total  int                `json:"total"`
}
