package model

import "time"

// ReminderDigest 是某个用户某天的提醒摘要，由定时任务生成并缓存在 Redis。
type ReminderDigest struct {
	UserID      uint           `json:"user_id"`
	Date        string         `json:"date"`
	Reminders   []ReminderItem `json:"reminders"`
	Total       int            `json:"total"`
	GeneratedAt time.Time      `json:"generated_at"`
}
