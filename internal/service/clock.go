package service

import "time"

// Clock 提供"今天"，测试中可替换为固定时间。
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock 返回指定时区的系统时钟，loc 为 nil 时使用本地时区。
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}
