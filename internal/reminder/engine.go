// Package reminder 根据植物的养护周期和最近一次养护日期计算提醒列表。
// 计算是纯函数：相同的植物数据与相同的“今天”总是得到相同的结果。
package reminder

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"leaf-care-go/internal/model"
)

// NeverRecorded 是从未记录过养护时使用的逾期哨兵值。
// 它表示“最高紧急度、历史未知”，不是真实天数，不应展示给用户。
const NeverRecorded = 999

var urgencyRank = map[string]int{
	model.UrgencyHigh:   0,
	model.UrgencyMedium: 1,
	model.UrgencyLow:    2,
}

var actionVerb = map[string]string{
	model.ActionWater:     "浇水",
	model.ActionFertilize: "施肥",
}

// Compute 生成 today 当天需要关注的提醒，已按紧急度和逾期天数排序。
// 已软删除的植物会被跳过。
func Compute(today time.Time, plants []model.Plant) []model.ReminderItem {
	today = civilDate(today)
	reminders := make([]model.ReminderItem, 0)

	for _, p := range plants {
		if p.IsDeleted {
			continue
		}
		if item, ok := evaluate(today, p, model.ActionWater, p.WaterCycle, p.LastWatered); ok {
			reminders = append(reminders, item)
		}
		if item, ok := evaluate(today, p, model.ActionFertilize, p.FertilizeCycle, p.LastFertilized); ok {
			reminders = append(reminders, item)
		}
	}

	Sort(reminders)
	return reminders
}

// Sort 按紧急度（high、medium、low）升序，再按逾期天数降序稳定排序。
func Sort(reminders []model.ReminderItem) {
	slices.SortStableFunc(reminders, func(a, b model.ReminderItem) int {
		if c := cmp.Compare(urgencyRank[a.Urgency], urgencyRank[b.Urgency]); c != 0 {
			return c
		}
		return cmp.Compare(b.DaysOverdue, a.DaysOverdue)
	})
}

func evaluate(today time.Time, p model.Plant, action string, cycle int, last *time.Time) (model.ReminderItem, bool) {
	if cycle <= 0 {
		return model.ReminderItem{}, false
	}

	overdue := DaysOverdue(today, last, cycle)
	if overdue < -1 {
		return model.ReminderItem{}, false
	}

	clamped := max(overdue, 0)
	urgency := Urgency(clamped, cycle)

	base := today
	if last != nil {
		base = civilDate(*last)
	}

	return model.ReminderItem{
		PlantID:       p.ID,
		PlantName:     p.Nickname,
		Type:          action,
		Message:       message(p.Nickname, action, overdue, last == nil),
		DaysOverdue:   clamped,
		Urgency:       urgency,
		DueDate:       base.AddDate(0, 0, cycle).Format(model.DateLayout),
		Icon:          Icon(action, urgency),
		NeverRecorded: last == nil,
	}, true
}

// DaysOverdue 返回距上次养护的天数减去周期。未记录时返回 NeverRecorded。
// 负数表示尚未到期。
func DaysOverdue(today time.Time, last *time.Time, cycle int) int {
	if last == nil || last.IsZero() {
		return NeverRecorded
	}
	return daysBetween(civilDate(*last), civilDate(today)) - cycle
}

// Urgency 根据逾期天数相对周期的比例划分紧急度。负数始终为 low。
func Urgency(daysOverdue, cycle int) string {
	if daysOverdue < 0 {
		return model.UrgencyLow
	}
	safeCycle := max(cycle, 1)
	ratio := float64(daysOverdue) / float64(safeCycle)
	switch {
	case ratio > 0.5:
		return model.UrgencyHigh
	case ratio > 0.2:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}

// Icon 返回操作图标，高、中紧急度附加额外标记。
func Icon(action, urgency string) string {
	base := "🍃"
	switch action {
	case model.ActionWater:
		base = "💧"
	case model.ActionFertilize:
		base = "🌱"
	}
	switch urgency {
	case model.UrgencyHigh:
		return base + "🔥"
	case model.UrgencyMedium:
		return base + "⏰"
	}
	return base
}

func message(nickname, action string, overdue int, never bool) string {
	verb := actionVerb[action]
	switch {
	case never:
		return fmt.Sprintf("%s还没有%s记录，请尽快%s", nickname, verb, verb)
	case overdue == -1:
		return fmt.Sprintf("%s明天需要%s", nickname, verb)
	default:
		return fmt.Sprintf("%s已逾期%d天未%s", nickname, overdue, verb)
	}
}

// civilDate 丢弃时分秒，只保留日历日期（按 t 自身的时区）。
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween 按日历日计算，两端均为 UTC 零点。
// 不使用 time.Duration，它在约 292 年处饱和。
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / 86400)
}
