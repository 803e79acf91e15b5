package model

// 提醒的操作类型
const (
	ActionWater     = "water"
	ActionFertilize = "fertilize"
)

// 紧急程度
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// ReminderItem 是每次请求实时计算出的提醒，不落库。
// DaysOverdue 已截断为非负；NeverRecorded 为 true 时 DaysOverdue 为哨兵值，不代表真实天数。
type ReminderItem struct {
	PlantID       uint   `json:"plant_id"`
	PlantName     string `json:"plant_name"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	DaysOverdue   int    `json:"days_overdue"`
	Urgency       string `json:"urgency"`
	DueDate       string `json:"due_date"`
	Icon          string `json:"icon"`
	NeverRecorded bool   `json:"never_recorded"`
}

// ReminderList 是提醒列表接口的 data 部分。
type ReminderList struct {
	Reminders []ReminderItem `json:"reminders"`
	Total     int            `json:"total"`
}
