package schedule

import "storage-cycles/internal/model"

// HourSet is a bitmask over hours 0..23.
type HourSet uint32

func (s HourSet) Has(hour int) bool {
	return hour >= 0 && hour < 24 && s&(1<<uint(hour)) != 0
}

func (s *HourSet) add(hour int) {
	*s |= 1 << uint(hour)
}

// Count returns the number of hours in the set.
func (s HourSet) Count() int {
	n := 0
	for h := 0; h < 24; h++ {
		if s.Has(h) {
			n++
		}
	}
	return n
}

// Hours lists the hours in ascending order.
func (s HourSet) Hours() []int {
	out := make([]int, 0, 24)
	for h := 0; h < 24; h++ {
		if s.Has(h) {
			out = append(out, h)
		}
	}
	return out
}

// WindowSlot is one charge/discharge window pair of a day.
type WindowSlot struct {
	ChargeHours    HourSet
	DischargeHours HourSet
}

// WindowMask holds the day's two window slots. Slot 1 takes the first two
// qualifying runs of the day, slot 2 takes the rest.
type WindowMask struct {
	First  WindowSlot
	Second WindowSlot
}

// SlotFor returns which slot (1 or 2) covers the hour for the given mode,
// or 0 when the hour belongs to no window. Hours dropped by the merge
// threshold return 0 and dispatch nothing.
func (m WindowMask) SlotFor(hour int, mode model.Mode) int {
	switch mode {
	case model.ModeCharge:
		if m.First.ChargeHours.Has(hour) {
			return 1
		}
		if m.Second.ChargeHours.Has(hour) {
			return 2
		}
	case model.ModeDischarge:
		if m.First.DischargeHours.Has(hour) {
			return 1
		}
		if m.Second.DischargeHours.Has(hour) {
			return 2
		}
	}
	return 0
}

// HourRun is one maximal run of consecutive same-mode hours, recorded for
// diagnostics.
type HourRun struct {
	Mode      model.Mode `json:"mode"`
	StartHour int        `json:"start_hour"`
	EndHour   int        `json:"end_hour"` // inclusive
	Filtered  bool       `json:"filtered"` // dropped by the merge threshold
	Slot      int        `json:"slot"`     // 0 when filtered
}

// BuildMask extracts the day's window mask from its resolved schedule.
// Hours 0..23 are scanned for maximal runs of consecutive non-standby
// hours sharing a mode; runs are not merged across midnight. Runs shorter
// than mergeThresholdMin are discarded. The first two surviving runs form
// the first window, all further runs fold into the second; runs past the
// fourth are additionally counted as merged segments.
func BuildMask(day model.DailySchedule, mergeThresholdMin int) (WindowMask, []HourRun, int) {
	var runs []HourRun
	for h := 0; h < 24; {
		mode := day[h].Mode
		if mode == model.ModeStandby {
			h++
			continue
		}
		start := h
		for h < 24 && day[h].Mode == mode {
			h++
		}
		runs = append(runs, HourRun{Mode: mode, StartHour: start, EndHour: h - 1})
	}

	var mask WindowMask
	merged := 0
	kept := 0
	for i := range runs {
		r := &runs[i]
		hours := r.EndHour - r.StartHour + 1
		if hours*60 < mergeThresholdMin {
			r.Filtered = true
			continue
		}
		slot := 1
		if kept >= 2 {
			slot = 2
		}
		if kept >= 4 {
			merged++
		}
		r.Slot = slot
		target := &mask.First
		if slot == 2 {
			target = &mask.Second
		}
		set := &target.ChargeHours
		if r.Mode == model.ModeDischarge {
			set = &target.DischargeHours
		}
		for hh := r.StartHour; hh <= r.EndHour; hh++ {
			set.add(hh)
		}
		kept++
	}
	return mask, runs, merged
}
