package models

import (
	"errors"
	"fmt"
	"time"

	"storage-cycles/internal/economics"
	"storage-cycles/internal/model"
)

// ScheduleSpec is the request shape of a schedule: per-month defaults
// keyed 1..12 plus ordered date-range override rules.
type ScheduleSpec struct {
	Months    map[int]model.DailySchedule `json:"months"`
	DateRules []DateRuleSpec              `json:"date_rules,omitempty"`
}

// DateRuleSpec is one override rule with inclusive YYYY-MM-DD bounds.
type DateRuleSpec struct {
	Start    string              `json:"start"`
	End      string              `json:"end"`
	Schedule model.DailySchedule `json:"schedule"`
}

// TierPricesSpec is one month's tariff entry; nil fields fall back to the
// engine defaults.
type TierPricesSpec struct {
	Spike  *float64 `json:"spike,omitempty"`
	Peak   *float64 `json:"peak,omitempty"`
	Flat   *float64 `json:"flat,omitempty"`
	Valley *float64 `json:"valley,omitempty"`
	Deep   *float64 `json:"deep,omitempty"`
}

// SimulateRequest carries everything one cycles run needs.
type SimulateRequest struct {
	Samples  []model.LoadSample     `json:"samples"`
	Storage  model.StorageParams    `json:"storage"`
	Schedule ScheduleSpec           `json:"schedule"`
	Prices   map[int]TierPricesSpec `json:"prices,omitempty"`

	// Resample averages the input onto a 15-minute grid before running.
	Resample bool `json:"resample,omitempty"`
}

// CurvesRequest restricts a run to one calendar date.
type CurvesRequest struct {
	SimulateRequest
	Date string `json:"date"`
}

// CapacityRequest compares candidate capacities against a cycle target.
type CapacityRequest struct {
	SimulateRequest
	Capacities   []float64 `json:"capacities"`
	TargetCycles float64   `json:"target_cycles"`
}

// EconomicsRequest is the economics input verbatim.
type EconomicsRequest = economics.Input

const dateLayout = "2006-01-02"

// Validate checks everything the engine expects to hold before any
// simulation work starts.
func (r *SimulateRequest) Validate() error {
	if len(r.Samples) == 0 {
		return errors.New("samples are required")
	}
	if err := r.Storage.Validate(); err != nil {
		return err
	}
	hasCharge, hasDischarge := false, false
	scan := func(d model.DailySchedule) {
		for _, cell := range d {
			switch cell.Mode {
			case model.ModeCharge:
				hasCharge = true
			case model.ModeDischarge:
				hasDischarge = true
			}
		}
	}
	for m, d := range r.Schedule.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("schedule month %d out of range", m)
		}
		scan(d)
	}
	for i, rule := range r.Schedule.DateRules {
		if _, err := time.Parse(dateLayout, rule.Start); err != nil {
			return fmt.Errorf("date rule %d: bad start %q", i, rule.Start)
		}
		if _, err := time.Parse(dateLayout, rule.End); err != nil {
			return fmt.Errorf("date rule %d: bad end %q", i, rule.End)
		}
		scan(rule.Schedule)
	}
	if !hasCharge || !hasDischarge {
		return errors.New("schedule defines no charge/discharge windows")
	}
	for m, p := range r.Prices {
		if m < 1 || m > 12 {
			return fmt.Errorf("price month %d out of range", m)
		}
		for name, v := range map[string]*float64{
			"spike": p.Spike, "peak": p.Peak, "flat": p.Flat, "valley": p.Valley, "deep": p.Deep,
		} {
			if v != nil && *v <= 0 {
				return fmt.Errorf("month %d %s price must be > 0", m, name)
			}
		}
	}
	return nil
}

// MonthlySchedule materializes the request months; unset months stay at
// the all-standby zero value.
func (r *SimulateRequest) MonthlySchedule() model.MonthlySchedule {
	var out model.MonthlySchedule
	for m, d := range r.Schedule.Months {
		if m >= 1 && m <= 12 {
			out[m-1] = d
		}
	}
	return out
}

// Rules converts the date rule specs, assuming Validate passed.
func (r *SimulateRequest) Rules() []model.DateRule {
	out := make([]model.DateRule, 0, len(r.Schedule.DateRules))
	for _, rule := range r.Schedule.DateRules {
		start, err1 := time.ParseInLocation(dateLayout, rule.Start, time.Local)
		end, err2 := time.ParseInLocation(dateLayout, rule.End, time.Local)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, model.DateRule{Start: start, End: end, Schedule: rule.Schedule})
	}
	return out
}

// PriceTable resolves the request prices over the engine defaults.
func (r *SimulateRequest) PriceTable() model.PriceTable {
	pt := model.DefaultPriceTable()
	for m, spec := range r.Prices {
		if m < 1 || m > 12 {
			continue
		}
		tp := pt[m-1]
		if spec.Spike != nil {
			tp[model.TierSpike] = *spec.Spike
		}
		if spec.Peak != nil {
			tp[model.TierPeak] = *spec.Peak
		}
		if spec.Flat != nil {
			tp[model.TierFlat] = *spec.Flat
		}
		if spec.Valley != nil {
			tp[model.TierValley] = *spec.Valley
		}
		if spec.Deep != nil {
			tp[model.TierDeep] = *spec.Deep
		}
		pt[m-1] = tp
	}
	return pt
}
