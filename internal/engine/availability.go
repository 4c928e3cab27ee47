package engine

import (
	"fmt"
	"strings"

	"optimus/backend/internal/model"
)

// ── 共同空闲时间 ────────────────────────────────────────────
//
// 以小时为粒度构建 (星期, 小时) 忙闲矩阵：某人某节课只要落在该小时内，
// 整个小时即视为忙碌。矩阵在人员或记录变化时整体重建。
// ─────────────────────────────────────────────────────────────

// Window 工作时间窗口：Days 中每天的 StartHour..EndHour（含两端），每格一小时
type Window struct {
	Days      []model.Weekday `json:"days"`
	StartHour int             `json:"start_hour"`
	EndHour   int             `json:"end_hour"`
}

// DefaultWindow 周一至周五 08:00–18:00（含 18 点这一格）
func DefaultWindow() Window {
	return Window{
		Days:      []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday},
		StartHour: 8,
		EndHour:   18,
	}
}

// Validate 校验窗口配置
func (w Window) Validate() error {
	if len(w.Days) == 0 {
		return fmt.Errorf("时间窗口至少包含一天")
	}
	seen := make(map[model.Weekday]bool, len(w.Days))
	for _, d := range w.Days {
		if !d.Valid() {
			return fmt.Errorf("时间窗口包含无效的星期 %d", int(d))
		}
		if seen[d] {
			return fmt.Errorf("时间窗口中 %s 重复", d)
		}
		seen[d] = true
	}
	if w.StartHour < 0 || w.EndHour > 23 || w.StartHour > w.EndHour {
		return fmt.Errorf("时间窗口小时范围无效: %d-%d", w.StartHour, w.EndHour)
	}
	return nil
}

// Hours 窗口内的小时列表
func (w Window) Hours() []int {
	hours := make([]int, 0, w.EndHour-w.StartHour+1)
	for h := w.StartHour; h <= w.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// Contains 窗口是否包含该格
func (w Window) Contains(day model.Weekday, hour int) bool {
	if hour < w.StartHour || hour > w.EndHour {
		return false
	}
	for _, d := range w.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Cell 矩阵中的一格
type Cell struct {
	Busy      bool     `json:"busy"`
	Occupants []string `json:"occupants"`
}

type cellKey struct {
	day  model.Weekday
	hour int
}

// Matrix 忙闲矩阵
type Matrix struct {
	Window   Window
	Selected []string
	cells    map[cellKey]*Cell
}

// Cell 返回某格；窗口外返回 nil
func (m *Matrix) Cell(day model.Weekday, hour int) *Cell {
	return m.cells[cellKey{day, hour}]
}

// MatrixRow 矩阵中一天的所有格
type MatrixRow struct {
	Day   model.Weekday `json:"day"`
	Hours []int         `json:"hours"`
	Cells []Cell        `json:"cells"`
}

// Rows 按窗口顺序（星期、小时升序）导出矩阵
func (m *Matrix) Rows() []MatrixRow {
	hours := m.Window.Hours()
	rows := make([]MatrixRow, 0, len(m.Window.Days))
	for _, d := range m.Window.Days {
		row := MatrixRow{Day: d, Hours: hours, Cells: make([]Cell, 0, len(hours))}
		for _, h := range hours {
			c := m.cells[cellKey{d, h}]
			row.Cells = append(row.Cells, Cell{Busy: c.Busy, Occupants: append([]string(nil), c.Occupants...)})
		}
		rows = append(rows, row)
	}
	return rows
}

// FreeSlot 一个空闲小时 [StartHour, EndHour)
type FreeSlot struct {
	Day       model.Weekday `json:"day"`
	StartHour int           `json:"start_hour"`
	EndHour   int           `json:"end_hour"`
}

func (s FreeSlot) String() string {
	return fmt.Sprintf("%s %02d:00-%02d:00", s.Day, s.StartHour, s.EndHour)
}

// AvailabilityEngine 共同空闲时间计算
type AvailabilityEngine struct {
	Window Window
}

// NewAvailabilityEngine 创建计算器；窗口非法时回落到 DefaultWindow
func NewAvailabilityEngine(w Window) *AvailabilityEngine {
	if w.Validate() != nil {
		w = DefaultWindow()
	}
	return &AvailabilityEngine{Window: w}
}

// BuildMatrix 根据记录与选中人员构建忙闲矩阵
//
// 教师字段拆分后，记录中每一位被选中的成员都会记入对应格的占用者；
// 窗口外（如周六、19 点以后）的时段被忽略。
func (e *AvailabilityEngine) BuildMatrix(records []model.CourseRecord, selectedPeople []string) *Matrix {
	m := &Matrix{
		Window:   e.Window,
		Selected: normalizeSelection(selectedPeople),
		cells:    make(map[cellKey]*Cell),
	}
	for _, d := range e.Window.Days {
		for _, h := range e.Window.Hours() {
			m.cells[cellKey{d, h}] = &Cell{Occupants: []string{}}
		}
	}
	if len(m.Selected) == 0 {
		return m
	}

	selected := make(map[string]bool, len(m.Selected))
	for _, p := range m.Selected {
		selected[p] = true
	}

	for _, rec := range records {
		var teaching []string
		for _, name := range SplitInstructors(rec.Instructor) {
			if selected[name] && !containsString(teaching, name) {
				teaching = append(teaching, name)
			}
		}
		if len(teaching) == 0 {
			continue
		}
		for _, slot := range rec.Slots {
			c, ok := m.cells[cellKey{slot.Day, slot.Start / 60}]
			if !ok {
				continue
			}
			c.Busy = true
			for _, name := range teaching {
				if !containsString(c.Occupants, name) {
					c.Occupants = append(c.Occupants, name)
				}
			}
		}
	}
	return m
}

// FreeSlots 按星期、小时顺序列出空闲格；未选中任何人时返回空
func FreeSlots(m *Matrix) []FreeSlot {
	if m == nil || len(m.Selected) == 0 {
		return []FreeSlot{}
	}
	free := make([]FreeSlot, 0)
	for _, d := range m.Window.Days {
		for _, h := range m.Window.Hours() {
			if !m.cells[cellKey{d, h}].Busy {
				free = append(free, FreeSlot{Day: d, StartHour: h, EndHour: h + 1})
			}
		}
	}
	return free
}

// CoalesceFreeSlots 合并同一天相邻的空闲小时，输入需为 FreeSlots 的输出顺序
func CoalesceFreeSlots(slots []FreeSlot) []FreeSlot {
	out := make([]FreeSlot, 0, len(slots))
	for _, s := range slots {
		if n := len(out); n > 0 && out[n-1].Day == s.Day && out[n-1].EndHour == s.StartHour {
			out[n-1].EndHour = s.EndHour
			continue
		}
		out = append(out, s)
	}
	return out
}

// Availability 一次计算的完整结果
type Availability struct {
	Matrix *Matrix
	Free   []FreeSlot
}

// Compute 构建矩阵并提取空闲时间
func (e *AvailabilityEngine) Compute(records []model.CourseRecord, selectedPeople []string) Availability {
	m := e.BuildMatrix(records, selectedPeople)
	return Availability{Matrix: m, Free: FreeSlots(m)}
}

// normalizeSelection 去空白、去重，保持顺序
func normalizeSelection(people []string) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		p = strings.TrimSpace(p)
		if p == "" || containsString(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
