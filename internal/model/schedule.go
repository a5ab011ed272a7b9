package model

import "time"

// ScheduleCell assigns one hour of the day a pricing tier and an operating
// instruction for the battery.
type ScheduleCell struct {
	Tier Tier `json:"tier" yaml:"tier"`
	Mode Mode `json:"mode" yaml:"mode"`
}

// DailySchedule is the 24 cells of one day, indexed by hour of day in local
// time. The zero value is all-standby at the flat tier, which is also the
// fallback when no schedule is configured for a month.
type DailySchedule [24]ScheduleCell

// MonthlySchedule holds the default DailySchedule per calendar month,
// index 0 = January.
type MonthlySchedule [12]DailySchedule

// ForMonth returns the default schedule for m.
func (ms MonthlySchedule) ForMonth(m time.Month) DailySchedule {
	return ms[int(m)-1]
}

// DateRule overrides the monthly default for an inclusive date range.
// Start and End are date-only instants; the time component is ignored.
type DateRule struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Schedule DailySchedule `json:"schedule"`
}

// Contains reports whether the rule's inclusive range covers the date of t.
func (r DateRule) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

// DateOf truncates t to midnight of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey formats t's calendar date as YYYY-MM-DD, the grouping key used
// throughout aggregation.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthKey formats t's calendar month as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
