package engine

import (
	"sort"
	"strings"

	"optimus/backend/internal/model"
)

// ── 冲突检测 ────────────────────────────────────────────────
//
// 同一教师或同一教室在同一天的时段重叠即为冲突。
// 先按星期分桶再两两比较，结果按展平后的 (i, j) 顺序输出，
// 与朴素的全量两两比较完全一致。
// ─────────────────────────────────────────────────────────────

// ConflictKind 冲突类型
type ConflictKind string

const (
	ConflictInstructor ConflictKind = "INSTRUCTOR"
	ConflictRoom       ConflictKind = "ROOM"
)

// MatchPolicy 教师字段比较策略
type MatchPolicy int

const (
	// MatchMembers 按 , & / 拆分后比较成员集合，有交集即冲突（默认）
	MatchMembers MatchPolicy = iota
	// MatchVerbatim 原始字符串整体比较
	MatchVerbatim
)

// ParseMatchPolicy 解析配置中的策略名，未知值回落到 MatchMembers
func ParseMatchPolicy(s string) MatchPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "verbatim") {
		return MatchVerbatim
	}
	return MatchMembers
}

// Occurrence 一个时段及其所属记录的回指信息
type Occurrence struct {
	RecordID   string           `json:"record_id"`
	CourseCode string           `json:"course_code"`
	Instructor string           `json:"instructor"`
	Room       string           `json:"room"`
	SourceFile string           `json:"source_file"`
	Slot       model.CourseSlot `json:"slot"`
}

// Conflict 两个重叠时段之间的一次冲突
type Conflict struct {
	Kind   ConflictKind `json:"kind"`
	Entity string       `json:"entity"`
	Source Occurrence   `json:"source"`
	Target Occurrence   `json:"target"`
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	Policy MatchPolicy
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(policy MatchPolicy) *ConflictDetector {
	return &ConflictDetector{Policy: policy}
}

// DetectConflicts 使用默认策略检测冲突
func DetectConflicts(records []model.CourseRecord) []Conflict {
	return NewConflictDetector(MatchMembers).Detect(records)
}

// occurrence 展平后的时段，idx 为展平序号
type occurrence struct {
	Occurrence
	idx     int
	members []string
}

// Detect 检测所有记录间的教师/教室冲突
//
// 同一记录内的时段不会互相冲突；每个无序对只比较一次，可产生 0~2 条冲突。
func (d *ConflictDetector) Detect(records []model.CourseRecord) []Conflict {
	buckets := make(map[model.Weekday][]occurrence)
	idx := 0
	for _, rec := range records {
		members := SplitInstructors(rec.Instructor)
		for _, slot := range rec.Slots {
			buckets[slot.Day] = append(buckets[slot.Day], occurrence{
				Occurrence: Occurrence{
					RecordID:   rec.RecordID,
					CourseCode: rec.CourseCode,
					Instructor: rec.Instructor,
					Room:       rec.Room,
					SourceFile: rec.SourceFile,
					Slot:       slot,
				},
				idx:     idx,
				members: members,
			})
			idx++
		}
	}

	type found struct {
		i, j     int
		conflict Conflict
	}
	var all []found

	for _, occs := range buckets {
		for i := 0; i < len(occs); i++ {
			for j := i + 1; j < len(occs); j++ {
				a, b := occs[i], occs[j]
				if a.RecordID == b.RecordID || !a.Slot.Overlaps(b.Slot) {
					continue
				}
				if entity, ok := d.sharedInstructor(a, b); ok {
					all = append(all, found{a.idx, b.idx, Conflict{
						Kind: ConflictInstructor, Entity: entity, Source: a.Occurrence, Target: b.Occurrence,
					}})
				}
				if sharedRoom(a.Room, b.Room) {
					all = append(all, found{a.idx, b.idx, Conflict{
						Kind: ConflictRoom, Entity: a.Room, Source: a.Occurrence, Target: b.Occurrence,
					}})
				}
			}
		}
	}

	// 桶内 i<j 保证 a.idx<b.idx；稳定排序保留同一对内 INSTRUCTOR 在 ROOM 之前
	sort.SliceStable(all, func(x, y int) bool {
		if all[x].i != all[y].i {
			return all[x].i < all[y].i
		}
		return all[x].j < all[y].j
	})

	result := make([]Conflict, 0, len(all))
	for _, f := range all {
		result = append(result, f.conflict)
	}
	return result
}

// sharedInstructor 返回共同教师（多名时按字典序以 ", " 连接）
func (d *ConflictDetector) sharedInstructor(a, b occurrence) (string, bool) {
	if d.Policy == MatchVerbatim {
		if a.Instructor != "" && a.Instructor != model.TBA && a.Instructor == b.Instructor {
			return a.Instructor, true
		}
		return "", false
	}

	var shared []string
	for _, m := range a.members {
		if containsString(shared, m) {
			continue
		}
		for _, n := range b.members {
			if m == n {
				shared = append(shared, m)
				break
			}
		}
	}
	if len(shared) == 0 {
		return "", false
	}
	// 排序后连接，使结果与记录先后顺序无关
	sort.Strings(shared)
	return strings.Join(shared, ", "), true
}

func sharedRoom(a, b string) bool {
	return a != "" && a != model.TBA && a == b
}

// CountByKind 按类型统计冲突数
func CountByKind(conflicts []Conflict) map[ConflictKind]int {
	counts := map[ConflictKind]int{ConflictInstructor: 0, ConflictRoom: 0}
	for _, c := range conflicts {
		counts[c.Kind]++
	}
	return counts
}
