package dto

// ── 分页请求 ──

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PaginationRequest 课程记录浏览的分页参数
//
// 记录在内存中过滤后再分页（见 RecordListRequest），因此这里给出切片区间而不是 SQL 偏移量。
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// GetPage 页码，缺省为 1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 每页条数，缺省 50，上限 200
func (p *PaginationRequest) GetPageSize() int {
	switch {
	case p.PageSize <= 0:
		return defaultPageSize
	case p.PageSize > maxPageSize:
		return maxPageSize
	}
	return p.PageSize
}

// Bounds 返回长度为 n 的结果集中当前页的 [start, end)；页码越界时 start == end == n
func (p *PaginationRequest) Bounds(n int) (start, end int) {
	start = (p.GetPage() - 1) * p.GetPageSize()
	if start > n {
		start = n
	}
	end = start + p.GetPageSize()
	if end > n {
		end = n
	}
	return start, end
}
