package model

import (
	"fmt"
	"time"
)

// LocalTime 将时间序列化为 "YYYY-MM-DD HH:MM:SS"。
type LocalTime time.Time

const (
	timeFormat = "2006-01-02 15:04:05"
	// DateLayout 是植物养护日期的统一格式。
	DateLayout = "2006-01-02"
)

// MarshalJSON implements the json.Marshaler interface.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	formatted := fmt.Sprintf("\"%s\"", time.Time(t).Format(timeFormat))
	return []byte(formatted), nil
}

// ParseDate 解析 YYYY-MM-DD，空串或格式错误时返回 nil。
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

// FormatDatePtr 将可空日期格式化为可空字符串。
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
