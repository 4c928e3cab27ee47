package dto

// ── 课程记录模块 DTO ──

// RecordListRequest 课程记录列表查询参数
type RecordListRequest struct {
	PaginationRequest
	Dept string `form:"dept" binding:"omitempty,max=50"`
	Q    string `form:"q"    binding:"omitempty,max=100"`
}

// RelatedRequest 关联记录查询参数
type RelatedRequest struct {
	Type  string `form:"type"  binding:"required,oneof=course instructor room"`
	Label string `form:"label" binding:"required,max=500"`
}

// SlotResponse 上课时段
type SlotResponse struct {
	Day   string `json:"day"`
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "09:50"
}

// CourseRecordResponse 课程记录响应
type CourseRecordResponse struct {
	ID         string         `json:"id"`
	SourceFile string         `json:"source_file"`
	CourseCode string         `json:"course_code"`
	CourseName string         `json:"course_name"`
	Instructor string         `json:"instructor"`
	Room       string         `json:"room"`
	Dept       string         `json:"dept"`
	Slots      []SlotResponse `json:"slots"`
}
