package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"optimus/backend/internal/model"
)

// ── 统计与检索 ──────────────────────────────────────────────

// 热力图范围：周一至周六，07:00–19:00
const (
	heatmapStartHour = 7
	heatmapEndHour   = 19
)

// minInstructorNameLen 教师名录中名字的最短长度（不含），过滤 "Dr"、"TA" 之类的碎片
const minInstructorNameLen = 2

// HeatCell 热力图中一格的课程数
type HeatCell struct {
	Day   model.Weekday `json:"day"`
	Hour  int           `json:"hour"`
	Count int           `json:"count"`
}

// Heatmap 全校课时密度
type Heatmap struct {
	Days  []model.Weekday `json:"days"`
	Hours []int           `json:"hours"`
	Cells []HeatCell      `json:"cells"`
	Peak  int             `json:"peak"`
}

// Density 统计每个 (星期, 小时) 开始的时段数，按星期、小时顺序输出
func Density(records []model.CourseRecord) Heatmap {
	days := []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday}
	hours := make([]int, 0, heatmapEndHour-heatmapStartHour+1)
	for h := heatmapStartHour; h <= heatmapEndHour; h++ {
		hours = append(hours, h)
	}

	counts := make(map[cellKey]int)
	for _, rec := range records {
		for _, slot := range rec.Slots {
			counts[cellKey{slot.Day, slot.Start / 60}]++
		}
	}

	hm := Heatmap{Days: days, Hours: hours, Cells: make([]HeatCell, 0, len(days)*len(hours))}
	for _, d := range days {
		for _, h := range hours {
			c := counts[cellKey{d, h}]
			if c > hm.Peak {
				hm.Peak = c
			}
			hm.Cells = append(hm.Cells, HeatCell{Day: d, Hour: h, Count: c})
		}
	}
	return hm
}

// RoomUsage 教室使用情况
type RoomUsage struct {
	Room     string `json:"room"`
	Sessions int    `json:"sessions"`
	Minutes  int    `json:"minutes"`
}

// RoomUtilisation 按排课次数降序统计教室，limit<=0 表示不限；TBA 教室不计
func RoomUtilisation(records []model.CourseRecord, limit int) []RoomUsage {
	byRoom := make(map[string]*RoomUsage)
	for _, rec := range records {
		if rec.Room == "" || rec.Room == model.TBA {
			continue
		}
		u, ok := byRoom[rec.Room]
		if !ok {
			u = &RoomUsage{Room: rec.Room}
			byRoom[rec.Room] = u
		}
		for _, slot := range rec.Slots {
			u.Sessions++
			u.Minutes += slot.Duration()
		}
	}

	out := make([]RoomUsage, 0, len(byRoom))
	for _, u := range byRoom {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sessions != out[j].Sessions {
			return out[i].Sessions > out[j].Sessions
		}
		return out[i].Room < out[j].Room
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DeptCount 院系课程数
type DeptCount struct {
	Dept    string `json:"dept"`
	Courses int    `json:"courses"`
}

// DeptDistribution 各院系记录数，按数量降序
func DeptDistribution(records []model.CourseRecord) []DeptCount {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Dept]++
	}
	out := make([]DeptCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DeptCount{Dept: d, Courses: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Courses != out[j].Courses {
			return out[i].Courses > out[j].Courses
		}
		return out[i].Dept < out[j].Dept
	})
	return out
}

// Departments 去重并排序的院系列表
func Departments(records []model.CourseRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, rec := range records {
		if !seen[rec.Dept] {
			seen[rec.Dept] = true
			out = append(out, rec.Dept)
		}
	}
	sort.Strings(out)
	return out
}

// Instructors 教师名录：拆分后去重、按字母序排列，丢弃过短的碎片
func Instructors(records []model.CourseRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, rec := range records {
		for _, name := range SplitInstructors(rec.Instructor) {
			if utf8.RuneCountInString(name) <= minInstructorNameLen || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// SearchInstructors 在名录中做大小写不敏感的子串检索，最多返回 limit 条
func SearchInstructors(directory []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0)
	for _, name := range directory {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
		}
	}
	return out
}

// FilterRecords 按院系精确过滤，再按教师、课程代码、教室做大小写不敏感的子串检索
//
// dept 为空或 "All" 时不过滤院系。
func FilterRecords(records []model.CourseRecord, dept, term string) []model.CourseRecord {
	q := strings.ToLower(strings.TrimSpace(term))
	out := make([]model.CourseRecord, 0)
	for _, rec := range records {
		if dept != "" && dept != "All" && rec.Dept != dept {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(rec.Instructor), q) &&
			!strings.Contains(strings.ToLower(rec.CourseCode), q) &&
			!strings.Contains(strings.ToLower(rec.Room), q) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// NodeType 关联检索的节点类型
type NodeType string

const (
	NodeCourse     NodeType = "course"
	NodeInstructor NodeType = "instructor"
	NodeRoom       NodeType = "room"
)

// ParseNodeType 解析节点类型
func ParseNodeType(s string) (NodeType, bool) {
	switch NodeType(strings.ToLower(strings.TrimSpace(s))) {
	case NodeCourse:
		return NodeCourse, true
	case NodeInstructor:
		return NodeInstructor, true
	case NodeRoom:
		return NodeRoom, true
	}
	return "", false
}

// Related 返回与某节点关联的记录：课程与教室精确匹配，教师按拆分成员匹配
func Related(records []model.CourseRecord, nodeType NodeType, label string) []model.CourseRecord {
	out := make([]model.CourseRecord, 0)
	for _, rec := range records {
		var hit bool
		switch nodeType {
		case NodeCourse:
			hit = rec.CourseCode == label
		case NodeRoom:
			hit = rec.Room == label
		case NodeInstructor:
			hit = hasInstructor(rec.Instructor, label)
		}
		if hit {
			out = append(out, rec)
		}
	}
	return out
}
