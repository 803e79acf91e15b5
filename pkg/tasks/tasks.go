// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import (
	"time"

	"leaf-care-go/internal/model"
)

// ReminderDigestTask 是每日提醒摘要任务，每个有植物的用户一条。
type ReminderDigestTask struct {
	UserID      uint                 `json:"user_id"`
	Date        string               `json:"date"`
	Reminders   []model.ReminderItem `json:"reminders"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Digest 转换为缓存用的摘要结构。
func (t ReminderDigestTask) Digest() model.ReminderDigest {
	reminders := t.Reminders
	if reminders == nil {
		reminders = []model.ReminderItem{}
	}
	return model.ReminderDigest{
		UserID:      t.UserID,
		Date:        t.Date,
		Reminders:   reminders,
		Total:       len(reminders),
		GeneratedAt: t.GeneratedAt,
	}
}
