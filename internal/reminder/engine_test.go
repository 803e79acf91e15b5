package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-care-go/internal/model"
)

var today = time.Date(2024, time.May, 20, 15, 30, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	d := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
	return &d
}

func waterOnly(id uint, name string, cycle int, last *time.Time) model.Plant {
	return model.Plant{ID: id, Nickname: name, WaterCycle: cycle, LastWatered: last}
}

func TestNeverWateredIsMaximallyOverdue(t *testing.T) {
	got := Compute(today, []model.Plant{waterOnly(1, "绿萝", 7, nil)})

	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, NeverRecorded, r.DaysOverdue)
	assert.Equal(t, model.UrgencyHigh, r.Urgency)
	assert.True(t, r.NeverRecorded)
	assert.Equal(t, "2024-05-27", r.DueDate)
	assert.Equal(t, "💧🔥", r.Icon)
	assert.NotContains(t, r.Message, "999")
}

func TestWateredTodayProducesNothing(t *testing.T) {
	got := Compute(today, []model.Plant{waterOnly(1, "绿萝", 7, daysAgo(0))})
	assert.Empty(t, got)
}

func TestDueTomorrow(t *testing.T) {
	got := Compute(today, []model.Plant{waterOnly(1, "绿萝", 7, daysAgo(6))})

	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, 0, r.DaysOverdue)
	assert.Equal(t, model.UrgencyLow, r.Urgency)
	assert.Equal(t, "绿萝明天需要浇水", r.Message)
	assert.Equal(t, "2024-05-21", r.DueDate)
	assert.Equal(t, "💧", r.Icon)
}

func TestMediumTier(t *testing.T) {
	got := Compute(today, []model.Plant{waterOnly(1, "龟背竹", 7, daysAgo(10))})

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].DaysOverdue)
	assert.Equal(t, model.UrgencyMedium, got[0].Urgency)
	assert.Equal(t, "龟背竹已逾期3天未浇水", got[0].Message)
	assert.Equal(t, "💧⏰", got[0].Icon)
}

func TestHighTier(t *testing.T) {
	got := Compute(today, []model.Plant{waterOnly(1, "多肉", 7, daysAgo(15))})

	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].DaysOverdue)
	assert.Equal(t, model.UrgencyHigh, got[0].Urgency)
}

func TestZeroCycleDisablesAction(t *testing.T) {
	p := model.Plant{ID: 1, Nickname: "仙人掌", WaterCycle: 0, FertilizeCycle: 0}
	assert.Empty(t, Compute(today, []model.Plant{p}))
}

func TestFertilizeReminder(t *testing.T) {
	p := model.Plant{ID: 3, Nickname: "茉莉", FertilizeCycle: 30, LastFertilized: daysAgo(30)}
	got := Compute(today, []model.Plant{p})

	require.Len(t, got, 1)
	assert.Equal(t, model.ActionFertilize, got[0].Type)
	assert.Equal(t, "茉莉已逾期0天未施肥", got[0].Message)
	assert.Equal(t, "🌱", got[0].Icon)
}

func TestDeletedPlantsAreSkipped(t *testing.T) {
	p := waterOnly(1, "绿萝", 7, nil)
	p.IsDeleted = true
	assert.Empty(t, Compute(today, []model.Plant{p}))
}

func TestTimeOfDayIsIgnored(t *testing.T) {
	last := time.Date(2024, time.May, 14, 23, 59, 0, 0, time.UTC)
	morning := time.Date(2024, time.May, 20, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, -1, DaysOverdue(morning, &last, 7))
}

func TestOrdering(t *testing.T) {
	plants := []model.Plant{
		waterOnly(1, "low", 7, daysAgo(6)),        // low, 0
		waterOnly(2, "high-small", 7, daysAgo(12)), // high, 5
		waterOnly(3, "medium", 7, daysAgo(10)),     // medium, 3
		waterOnly(4, "high-big", 7, daysAgo(20)),   // high, 13
		waterOnly(5, "low-2", 10, daysAgo(11)),     // low, 1
	}

	got := Compute(today, plants)
	require.Len(t, got, 5)

	ids := make([]uint, len(got))
	for i, r := range got {
		ids[i] = r.PlantID
	}
	assert.Equal(t, []uint{4, 2, 3, 5, 1}, ids)
}

func TestSortIsStableWithinEqualKeys(t *testing.T) {
	items := []model.ReminderItem{
		{PlantID: 1, Urgency: model.UrgencyLow, DaysOverdue: 0},
		{PlantID: 2, Urgency: model.UrgencyHigh, DaysOverdue: 4},
		{PlantID: 3, Urgency: model.UrgencyLow, DaysOverdue: 0},
		{PlantID: 4, Urgency: model.UrgencyMedium, DaysOverdue: 2},
	}
	Sort(items)

	var ids []uint
	for _, r := range items {
		ids = append(ids, r.PlantID)
	}
	assert.Equal(t, []uint{2, 4, 1, 3}, ids)
}

func TestComputeIsIdempotent(t *testing.T) {
	plants := []model.Plant{
		{ID: 1, Nickname: "a", WaterCycle: 7, FertilizeCycle: 30, LastWatered: daysAgo(9)},
		{ID: 2, Nickname: "b", WaterCycle: 3, LastWatered: daysAgo(2), FertilizeCycle: 14},
	}

	first := Compute(today, plants)
	second := Compute(today, plants)
	assert.Equal(t, first, second)
}

func TestUrgencyBoundaries(t *testing.T) {
	cases := []struct {
		overdue, cycle int
		want           string
	}{
		{-1, 7, model.UrgencyLow},
		{0, 7, model.UrgencyLow},
		{1, 5, model.UrgencyLow},     // 0.2 is not > 0.2
		{2, 7, model.UrgencyMedium},  // 0.28
		{5, 10, model.UrgencyMedium}, // 0.5 is not > 0.5
		{6, 10, model.UrgencyHigh},
		{3, 0, model.UrgencyHigh}, // cycle floored to 1
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Urgency(tc.overdue, tc.cycle), "overdue=%d cycle=%d", tc.overdue, tc.cycle)
	}
}

func TestIconFallback(t *testing.T) {
	assert.Equal(t, "🍃", Icon("prune", model.UrgencyLow))
	assert.Equal(t, "🌱🔥", Icon(model.ActionFertilize, model.UrgencyHigh))
}

func TestDaysOverdueAcrossCenturies(t *testing.T) {
	last := time.Date(1500, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 191520, DaysOverdue(today, &last, 7))

	future := time.Date(2500, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, -173723, DaysOverdue(today, &future, 7))
}
