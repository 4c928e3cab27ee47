package engine

import (
	"regexp"
	"strings"

	"optimus/backend/internal/model"
)

// reInstructorSep 多名教师的分隔符：逗号、& 与 /
var reInstructorSep = regexp.MustCompile(`[,&/]`)

// SplitInstructors 拆分教师字段，去空白并丢弃空项与 TBA，保持原顺序
func SplitInstructors(raw string) []string {
	parts := reInstructorSep.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" || name == model.TBA {
			continue
		}
		out = append(out, name)
	}
	return out
}

// hasInstructor 记录的教师字段中是否包含 name（按拆分后的成员精确比较）
func hasInstructor(raw, name string) bool {
	for _, n := range SplitInstructors(raw) {
		if n == name {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
