// Package engine 课表核心计算：表头归一化、时间码解析、冲突检测与共同空闲时间。
//
// 本包只做纯内存计算，不涉及文件、存储与 HTTP；输入不会被修改，
// 不同调用之间不共享可变状态，可由上层并发调用。
package engine

import (
	"strconv"
	"strings"

	"optimus/backend/internal/model"
)

// ── 时间码解析器 ────────────────────────────────────────────
//
// 将 "M 2 3"、"T TH 4"、"W5" 之类的紧凑时间码展开为每周时段。
//
// 节次模型：每节 50 分钟，第 N 节开始于 (7+N):00，即第 1 节 08:00。
// ─────────────────────────────────────────────────────────────

const (
	// PeriodMinutes 每节课时长
	PeriodMinutes = 50
	// periodHourOffset 第 N 节的开始小时 = N + periodHourOffset
	periodHourOffset = 7
)

// dayTokens 星期缩写表，仅做整词精确匹配（键为大写），避免 T 与 TH 的歧义
var dayTokens = map[string]model.Weekday{
	"M":   model.Monday,
	"T":   model.Tuesday,
	"W":   model.Wednesday,
	"TH":  model.Thursday,
	"F":   model.Friday,
	"S":   model.Saturday,
	"SU":  model.Sunday,
	"MON": model.Monday,
	"TUE": model.Tuesday,
	"WED": model.Wednesday,
	"THU": model.Thursday,
	"FRI": model.Friday,
	"SAT": model.Saturday,
	"SUN": model.Sunday,
}

// PeriodInterval 第 N 节对应的分钟区间 [start, end)
func PeriodInterval(period int) (start, end int) {
	start = (periodHourOffset + period) * 60
	return start, start + PeriodMinutes
}

// LookupDay 按缩写查找星期（大小写不敏感，精确匹配）
func LookupDay(token string) (model.Weekday, bool) {
	d, ok := dayTokens[strings.ToUpper(token)]
	return d, ok
}

// validPeriod 节次区间是否落在一天之内
func validPeriod(period int) bool {
	start, end := PeriodInterval(period)
	return start >= 0 && end <= model.MinutesPerDay
}

// timeToken 切分后的 token；compact 表示它是从 "M23" 这类字母数字连写中拆出来的
type timeToken struct {
	text    string
	compact bool
}

// expandPeriods 连写的 "M23" 中 "23" 不是合法节次时按单个数字拆成 2、3；
// 独立书写的节次（"M 23"）与合法的多位节次（"M10"）保持原值，越界的交由 NewCourseSlot 拒绝
func expandPeriods(tok timeToken, period int) []int {
	if !tok.compact || validPeriod(period) || len(tok.text) < 2 {
		return []int{period}
	}
	out := make([]int, 0, len(tok.text))
	for _, r := range tok.text {
		if !isDigit(r) {
			return []int{period}
		}
		out = append(out, int(r-'0'))
	}
	return out
}

// tokenizeTimeCode 标点归一化后按空白切分，再在字母与数字交界处拆开（"M23" → "M" "23"）
func tokenizeTimeCode(raw string) []timeToken {
	s := strings.NewReplacer(",", " ", "-", " ").Replace(raw)

	var out []timeToken
	for _, field := range strings.Fields(s) {
		parts := splitLetterDigit(field)
		for _, p := range parts {
			out = append(out, timeToken{text: p, compact: len(parts) > 1})
		}
	}
	return out
}

func splitLetterDigit(field string) []string {
	var (
		parts []string
		start int
		prev  rune
	)
	for i, r := range field {
		if i > 0 && ((isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))) {
			parts = append(parts, field[start:i])
			start = i
		}
		prev = r
	}
	return append(parts, field[start:])
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

// parseState 解析状态机的状态
type parseState int

const (
	// collectingDays 正在累积星期组；遇到节次时对当前组生效
	collectingDays parseState = iota
	// collectingPeriods 正在读取节次；此时遇到星期意味着开始新的星期组
	collectingPeriods
)

// timeCodeMachine 时间码解析状态机
type timeCodeMachine struct {
	state      parseState
	activeDays []model.Weekday
	slots      []model.CourseSlot
}

// onDay 处理星期 token
func (m *timeCodeMachine) onDay(day model.Weekday) {
	if m.state == collectingPeriods {
		m.startDayGroup()
	}
	for _, d := range m.activeDays {
		if d == day {
			m.state = collectingDays
			return
		}
	}
	m.activeDays = append(m.activeDays, day)
	m.state = collectingDays
}

// startDayGroup 节次之后出现星期：关闭上一组，清空累积的星期
func (m *timeCodeMachine) startDayGroup() {
	m.activeDays = m.activeDays[:0:0]
}

// onPeriod 处理节次 token，为每个已激活星期生成时段；同一 (星期, 开始) 只输出一次
func (m *timeCodeMachine) onPeriod(period int) {
	m.state = collectingPeriods
	start, end := PeriodInterval(period)
	for _, day := range m.activeDays {
		slot, err := model.NewCourseSlot(day, start, end)
		if err != nil {
			// 超出一天范围的节次按噪声处理
			break
		}
		if m.seen(slot) {
			continue
		}
		m.slots = append(m.slots, slot)
	}
}

func (m *timeCodeMachine) seen(slot model.CourseSlot) bool {
	for _, s := range m.slots {
		if s.Day == slot.Day && s.Start == slot.Start {
			return true
		}
	}
	return false
}

// onNoise 无法识别的 token 被忽略，但会打断"节次后接星期"的判定
func (m *timeCodeMachine) onNoise() {
	m.state = collectingDays
}

// ParseTimeCode 解析时间码为时段列表（纯函数）
//
// 空串或包含 TBA（大小写不敏感）时返回空切片；无法识别的 token 静默跳过。
// 返回顺序即遍历顺序：按节次 token 出现先后，组内按星期累积顺序。
func ParseTimeCode(raw string) []model.CourseSlot {
	if strings.TrimSpace(raw) == "" || strings.Contains(strings.ToUpper(raw), model.TBA) {
		return []model.CourseSlot{}
	}

	m := &timeCodeMachine{state: collectingDays}
	for _, tok := range tokenizeTimeCode(raw) {
		if day, ok := LookupDay(tok.text); ok {
			m.onDay(day)
			continue
		}
		if period, err := strconv.Atoi(tok.text); err == nil {
			for _, p := range expandPeriods(tok, period) {
				m.onPeriod(p)
			}
			continue
		}
		m.onNoise()
	}

	if m.slots == nil {
		return []model.CourseSlot{}
	}
	return m.slots
}
