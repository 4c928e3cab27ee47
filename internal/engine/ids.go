package engine

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator 记录 ID 生成器，只要求在一次导入会话内唯一
type IDGenerator interface {
	NextID() string
}

// UUIDGenerator 生成 UUIDv4，可直接作为数据库主键
type UUIDGenerator struct{}

// NextID 返回新的 UUID 字符串
func (UUIDGenerator) NextID() string { return uuid.NewString() }

// SequenceGenerator 单调递增计数器，用于 CLI 与测试中得到可预期的 ID
type SequenceGenerator struct {
	Prefix string
	n      atomic.Int64
}

// NewSequenceGenerator 创建以 prefix 为前缀的计数器
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

// NextID 返回 prefix-1、prefix-2 …
func (g *SequenceGenerator) NextID() string {
	return g.Prefix + "-" + strconv.FormatInt(g.n.Add(1), 10)
}
