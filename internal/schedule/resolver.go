package schedule

import (
	"time"

	"storage-cycles/internal/model"
)

// Resolve returns the effective 24-hour schedule for a calendar date.
// The first date rule whose inclusive range contains the date wins;
// otherwise the month's default applies. A month with no configured cells
// is the zero DailySchedule, which is all-standby at the flat tier, so
// resolution always succeeds.
func Resolve(date time.Time, defaults model.MonthlySchedule, rules []model.DateRule) model.DailySchedule {
	for _, r := range rules {
		if r.Contains(date) {
			return r.Schedule
		}
	}
	return defaults.ForMonth(date.Month())
}
