package engine

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"optimus/backend/internal/model"
)

// ── 表头归一化 ──────────────────────────────────────────────
//
// 各院系导出的 CSV 列名五花八门（"COURSE NO"、"Com_Code"、"DAYS/ H" …），
// 这里用一张有序的 (规范字段, 变体列表) 表做子串匹配，先声明者优先。
// ─────────────────────────────────────────────────────────────

// CanonicalField 规范字段名
type CanonicalField string

const (
	FieldCourseCode CanonicalField = "courseCode"
	FieldCourseName CanonicalField = "courseName"
	FieldInstructor CanonicalField = "instructor"
	FieldRoom       CanonicalField = "room"
	FieldTiming     CanonicalField = "timing"
)

// unknownPrefix 无法识别的表头前缀，其值不会进入记录
const unknownPrefix = "unknown_"

// maxCourseCodeLen 课程代码长度上限（不含），超长视为错位行
const maxCourseCodeLen = 20

// HeaderRule 一个规范字段及其表头变体
type HeaderRule struct {
	Field    CanonicalField
	Variants []string
}

// DefaultHeaderRules 默认匹配表
//
// instructor 排在 courseName 之前，否则 "Instructor_Name" 会因包含 "name" 被当作课程名。
func DefaultHeaderRules() []HeaderRule {
	return []HeaderRule{
		{Field: FieldCourseCode, Variants: []string{"course_no", "com_code", "code"}},
		{Field: FieldInstructor, Variants: []string{"instructor", "faculty", "teacher"}},
		{Field: FieldCourseName, Variants: []string{"course_title", "title", "name"}},
		{Field: FieldRoom, Variants: []string{"room", "venue", "loc"}},
		{Field: FieldTiming, Variants: []string{"days_h", "schedule", "hours", "timing"}},
	}
}

// Column 数据行中的一个单元格
type Column struct {
	Header string
	Value  string
}

// Row 一行数据，保持原文件列序
type Row []Column

// RowFromMap 由 表头→值 映射构造一行；按表头排序以保证结果可复现
func RowFromMap(m map[string]string) Row {
	headers := make([]string, 0, len(m))
	for h := range m {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	row := make(Row, 0, len(headers))
	for _, h := range headers {
		row = append(row, Column{Header: h, Value: m[h]})
	}
	return row
}

// RowSource 行数据来源，由调用方负责文件读取、分隔符与编码
type RowSource interface {
	Rows() ([]Row, error)
}

var (
	reHeaderSeparators = regexp.MustCompile(`[\s\-./]+`)
	reHeaderStrip      = regexp.MustCompile(`[^a-z_]`)
	reWhitespace       = regexp.MustCompile(`\s+`)

	// reNumeric 普通十进制数（可带符号、小数、指数）；NaN、Inf 之类的字面量不算数字
	reNumeric = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// cleanHeader 小写、分隔符统一为下划线，去掉 [a-z_] 以外的字符
func cleanHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = reHeaderSeparators.ReplaceAllString(s, "_")
	return reHeaderStrip.ReplaceAllString(s, "")
}

// matchHeader 按表顺序返回第一个匹配的规范字段
func matchHeader(rules []HeaderRule, header string) (CanonicalField, bool) {
	cleaned := cleanHeader(header)
	if cleaned == "" {
		return "", false
	}
	for _, rule := range rules {
		for _, v := range rule.Variants {
			if strings.Contains(cleaned, v) {
				return rule.Field, true
			}
		}
	}
	return "", false
}

// MapHeader 使用默认表映射表头；未匹配时返回 "unknown_<原表头>"
func MapHeader(header string) string {
	if f, ok := matchHeader(DefaultHeaderRules(), header); ok {
		return string(f)
	}
	return unknownPrefix + header
}

// CleanValue 去首尾空白、合并连续空白；空串与 "nan"（大小写不敏感）归一为 TBA
func CleanValue(val string) string {
	s := reWhitespace.ReplaceAllString(strings.TrimSpace(val), " ")
	if s == "" || strings.EqualFold(s, "nan") {
		return model.TBA
	}
	return s
}

// DeriveDept 取课程代码第一个空白分隔段；为数字或缺失时返回 Unknown
func DeriveDept(courseCode string) string {
	if courseCode == "" || courseCode == model.TBA {
		return model.UnknownDept
	}
	parts := strings.Fields(courseCode)
	if len(parts) == 0 {
		return model.UnknownDept
	}
	if reNumeric.MatchString(parts[0]) {
		return model.UnknownDept
	}
	return parts[0]
}

// ValidCourseCode 非空、非 TBA 且少于 20 个字符
func ValidCourseCode(code string) bool {
	return code != "" && code != model.TBA && utf8.RuneCountInString(code) < maxCourseCodeLen
}

// ── Normalizer ──

// Normalizer 表头归一化器
type Normalizer struct {
	rules []HeaderRule
	ids   IDGenerator
}

// Option Normalizer 配置项
type Option func(*Normalizer)

// WithHeaderRules 替换表头匹配表
func WithHeaderRules(rules []HeaderRule) Option {
	return func(n *Normalizer) { n.rules = rules }
}

// WithIDGenerator 替换记录 ID 生成器
func WithIDGenerator(ids IDGenerator) Option {
	return func(n *Normalizer) { n.ids = ids }
}

// NewNormalizer 创建 Normalizer，默认使用 DefaultHeaderRules 与 UUIDGenerator
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{rules: DefaultHeaderRules(), ids: UUIDGenerator{}}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// MapHeader 使用本实例的匹配表映射表头
func (n *Normalizer) MapHeader(header string) string {
	if f, ok := matchHeader(n.rules, header); ok {
		return string(f)
	}
	return unknownPrefix + header
}

// Report 一次归一化的统计
type Report struct {
	Rows           int      `json:"rows"`
	Kept           int      `json:"kept"`
	Dropped        int      `json:"dropped"`
	UnknownHeaders []string `json:"unknown_headers,omitempty"`
}

// Normalize 将原始行转为课程记录，丢弃课程代码无效的行
func (n *Normalizer) Normalize(rows []Row, sourceTag string) []model.CourseRecord {
	records, _ := n.NormalizeWithReport(rows, sourceTag)
	return records
}

// NormalizeWithReport 同 Normalize，并返回保留/丢弃统计与未识别的表头
func (n *Normalizer) NormalizeWithReport(rows []Row, sourceTag string) ([]model.CourseRecord, Report) {
	report := Report{Rows: len(rows)}
	headerMap := make(map[string]CanonicalField)
	unknown := make(map[string]bool)

	records := make([]model.CourseRecord, 0, len(rows))
	for idx, row := range rows {
		values := make(map[CanonicalField]string)
		for _, col := range row {
			field, seen := headerMap[col.Header]
			if !seen && !unknown[col.Header] {
				if f, ok := matchHeader(n.rules, col.Header); ok {
					field = f
					headerMap[col.Header] = f
				} else {
					unknown[col.Header] = true
					report.UnknownHeaders = append(report.UnknownHeaders, col.Header)
				}
			}
			if field == "" {
				continue
			}
			// 多列映射到同一字段时，第一个非 TBA 的值生效
			v := CleanValue(col.Value)
			if prev, ok := values[field]; !ok || (prev == model.TBA && v != model.TBA) {
				values[field] = v
			}
		}

		rec := n.buildRecord(values, sourceTag, idx)
		if !ValidCourseCode(rec.CourseCode) {
			report.Dropped++
			continue
		}
		records = append(records, rec)
	}
	report.Kept = len(records)
	return records, report
}

// NormalizeFrom 先完整读取 src 再归一化；读取失败时返回 *ParseFailure 且不返回任何记录
func (n *Normalizer) NormalizeFrom(src RowSource, sourceTag string) ([]model.CourseRecord, Report, error) {
	rows, err := src.Rows()
	if err != nil {
		return nil, Report{}, &ParseFailure{Source: sourceTag, Cause: err}
	}
	records, report := n.NormalizeWithReport(rows, sourceTag)
	return records, report, nil
}

// buildRecord 由规范字段值构造记录；缺失字段同样记为 TBA
func (n *Normalizer) buildRecord(values map[CanonicalField]string, sourceTag string, position int) model.CourseRecord {
	get := func(f CanonicalField) string {
		if v, ok := values[f]; ok {
			return v
		}
		return model.TBA
	}

	rec := model.CourseRecord{
		RecordID:   n.ids.NextID(),
		SourceFile: sourceTag,
		CourseCode: values[FieldCourseCode],
		CourseName: get(FieldCourseName),
		Instructor: get(FieldInstructor),
		Room:       get(FieldRoom),
		Position:   position,
	}
	rec.Dept = DeriveDept(rec.CourseCode)

	if timing, ok := values[FieldTiming]; ok {
		rec.Slots = ParseTimeCode(timing)
	} else {
		rec.Slots = []model.CourseSlot{}
	}
	for i := range rec.Slots {
		rec.Slots[i].RecordID = rec.RecordID
		rec.Slots[i].Position = i
	}
	return rec
}
