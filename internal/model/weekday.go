package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Weekday 星期（数据库中存 ISO 编号 1=周一 … 7=周日，JSON 中为英文全称）
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Week 一周七天的固定顺序
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// FromTimeWeekday 将 Go 的 time.Weekday (0=Sunday) 转为 ISO 编号
func FromTimeWeekday(wd time.Weekday) Weekday {
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// TimeWeekday 转回 time.Weekday
func (d Weekday) TimeWeekday() time.Weekday {
	if d == Sunday {
		return time.Sunday
	}
	return time.Weekday(d)
}

// Valid 是否为 1-7
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return d.TimeWeekday().String()
}

// ParseWeekday 按英文全称解析（大小写不敏感）
func ParseWeekday(name string) (Weekday, error) {
	for _, d := range Week {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("无效的星期: %q", name)
}

// MarshalText 输出英文全称
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("无效的星期: %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText 接受英文全称
func (d *Weekday) UnmarshalText(b []byte) error {
	v, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value 以 ISO 编号写入数据库
func (d Weekday) Value() (driver.Value, error) {
	return int64(d), nil
}

// Scan 从数据库读取 ISO 编号
func (d *Weekday) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*d = Weekday(v)
	case int32:
		*d = Weekday(v)
	case int16:
		*d = Weekday(v)
	default:
		return fmt.Errorf("无法将 %T 转为 Weekday", value)
	}
	return nil
}
