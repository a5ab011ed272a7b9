package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storage-cycles/internal/model"
)

func daySchedule(chargeHours, dischargeHours []int) model.DailySchedule {
	var d model.DailySchedule
	for _, h := range chargeHours {
		d[h] = model.ScheduleCell{Tier: model.TierDeep, Mode: model.ModeCharge}
	}
	for _, h := range dischargeHours {
		d[h] = model.ScheduleCell{Tier: model.TierPeak, Mode: model.ModeDischarge}
	}
	return d
}

func TestResolveMonthDefault(t *testing.T) {
	var months model.MonthlySchedule
	march := daySchedule([]int{0, 1}, []int{12, 13})
	months[2] = march

	got := Resolve(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), months, nil)
	assert.Equal(t, march, got, "uncovered date resolves to its month default exactly")
	assert.Equal(t, months.ForMonth(time.March), got)
}

func TestResolveRulePrecedence(t *testing.T) {
	var months model.MonthlySchedule
	months[2] = daySchedule([]int{0}, []int{12})

	first := daySchedule([]int{1}, []int{13})
	second := daySchedule([]int{2}, []int{14})
	rules := []model.DateRule{
		{
			Start:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Schedule: first,
		},
		{
			Start:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			Schedule: second,
		},
	}

	got := Resolve(time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC), months, rules)
	assert.Equal(t, first, got, "first matching rule wins")

	got = Resolve(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), months, rules)
	assert.Equal(t, second, got)

	got = Resolve(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), months, rules)
	assert.Equal(t, months.ForMonth(time.April), got, "no rule, empty month falls back to standby")
	for _, cell := range got {
		assert.Equal(t, model.ModeStandby, cell.Mode)
		assert.Equal(t, model.TierFlat, cell.Tier)
	}
}

func TestResolveRuleBoundsInclusive(t *testing.T) {
	override := daySchedule([]int{3}, []int{18})
	rules := []model.DateRule{{
		Start:    time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		Schedule: override,
	}}
	var months model.MonthlySchedule

	assert.Equal(t, override, Resolve(time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC), months, rules))
	assert.Equal(t, override, Resolve(time.Date(2024, 6, 12, 0, 0, 1, 0, time.UTC), months, rules))
	assert.NotEqual(t, override, Resolve(time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), months, rules))
}
