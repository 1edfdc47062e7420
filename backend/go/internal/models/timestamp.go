package models

import "time"

// TimeLayout 是所有对外时间戳使用的格式：UTC、毫秒精度。
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime 按 TimeLayout 格式化时间。
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
