package engine

import (
	"errors"
	"fmt"
)

// ErrParseFailure 调用方提供的数据行无法读取（文件损坏、编码错误等）
var ErrParseFailure = errors.New("数据行解析失败")

// ParseFailure 携带来源与原始错误的解析失败
//
// errors.Is(err, ErrParseFailure) 成立，errors.Unwrap 得到原始错误。
type ParseFailure struct {
	Source string
	Cause  error
}

func (e *ParseFailure) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", ErrParseFailure.Error(), e.Cause)
	}
	return fmt.Sprintf("%s [%s]: %v", ErrParseFailure.Error(), e.Source, e.Cause)
}

// Unwrap 返回原始错误
func (e *ParseFailure) Unwrap() error { return e.Cause }

// Is 使 ParseFailure 匹配 ErrParseFailure
func (e *ParseFailure) Is(target error) bool { return target == ErrParseFailure }
