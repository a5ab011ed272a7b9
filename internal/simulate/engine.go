package simulate

import (
	"fmt"
	"time"

	"storage-cycles/internal/model"
	"storage-cycles/internal/schedule"
)

const defaultIntervalHours = 0.25

// Point is one row of per-interval output, the primary artifact for
// "what happened" in a simulation.
type Point struct {
	Timestamp time.Time `json:"timestamp"`

	LoadKW float64    `json:"load_kw"`
	Tier   model.Tier `json:"tier"`
	Mode   model.Mode `json:"mode"`
	Price  float64    `json:"price"`

	LimitKW float64 `json:"limit_kw"`
	Slot    int     `json:"slot"`

	BatteryKW         float64 `json:"battery_kw"`
	GridKW            float64 `json:"grid_kw"`
	LoadWithStorageKW float64 `json:"load_with_storage_kw"`

	ChargeKWh    float64 `json:"charge_kwh"`
	DischargeKWh float64 `json:"discharge_kwh"`

	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`

	SOC float64 `json:"soc"`
}

// WindowKey identifies one window slot of one day.
type WindowKey struct {
	Day  string
	Slot int
}

// DayInfo is the resolved schedule artifacts of one simulated day.
type DayInfo struct {
	Schedule model.DailySchedule
	Mask     schedule.WindowMask
	Runs     []schedule.HourRun
	Merged   int
}

// Result is the full output of one simulation pass.
type Result struct {
	Points []Point

	// Windows holds the accumulated grid-side energy per window slot,
	// already constrained by the pipeline.
	Windows map[WindowKey]*windowBudget

	Days           map[string]*DayInfo
	Limits         LimitInfo
	MergedSegments int
	FinalSOC       float64
}

// WindowEnergy reports one slot's accumulated and target energies.
type WindowEnergy struct {
	ChargeKWh          float64
	DischargeKWh       float64
	ChargeTargetKWh    float64
	DischargeTargetKWh float64
}

// Window returns the energy ledger for a day and slot, zero when the slot
// never dispatched.
func (r *Result) Window(day string, slot int) WindowEnergy {
	b, ok := r.Windows[WindowKey{Day: day, Slot: slot}]
	if !ok {
		return WindowEnergy{}
	}
	return WindowEnergy{
		ChargeKWh:          b.ChargeKWh,
		DischargeKWh:       b.DischargeKWh,
		ChargeTargetKWh:    b.ChargeTargetKWh,
		DischargeTargetKWh: b.DischargeTargetKWh,
	}
}

// Engine evaluates one fixed schedule against one load series.
type Engine struct {
	params model.StorageParams
	months model.MonthlySchedule
	rules  []model.DateRule
	prices model.PriceTable
}

func New(params model.StorageParams, months model.MonthlySchedule, rules []model.DateRule, prices model.PriceTable) *Engine {
	return &Engine{params: params, months: months, rules: rules, prices: prices}
}

// Run folds the series left to right. SOC at interval i depends on SOC at
// i-1 and the window budgets depend on in-day order, so the pass is
// strictly sequential.
func (e *Engine) Run(samples []model.LoadSample) (*Result, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no load samples")
	}

	res := &Result{
		Points:  make([]Point, 0, len(samples)),
		Windows: map[WindowKey]*windowBudget{},
		Days:    map[string]*DayInfo{},
		Limits:  BuildLimitInfo(samples, e.params),
	}

	soc := e.params.StartSOC()
	dt := defaultIntervalHours

	for i, s := range samples {
		if i+1 < len(samples) {
			if d := samples[i+1].Timestamp.Sub(s.Timestamp).Hours(); d > 0 && d <= 1 {
				dt = d
			}
		}

		day := e.dayInfo(res, s.Timestamp)
		hour := s.Timestamp.Hour()
		cell := day.Schedule[hour]
		price := e.prices.Month(s.Timestamp.Month()).For(cell.Tier)

		st := pointState{
			params:  e.params,
			dtHours: dt,
			loadKW:  s.LoadKW,
			limitKW: res.Limits.LimitFor(s.Timestamp),
			mode:    cell.Mode,
			soc:     soc,
		}

		slot := day.Mask.SlotFor(hour, cell.Mode)
		if slot > 0 {
			st.budget = e.budgetFor(res, model.DayKey(s.Timestamp), slot)
		} else {
			// Outside every window (standby, or a run dropped by the
			// merge threshold) the battery does nothing.
			st.mode = model.ModeStandby
		}

		st.run()

		if st.budget != nil {
			st.budget.ChargeKWh += st.chargeKWh
			st.budget.DischargeKWh += st.dischargeKWh
		}
		soc = clampRange(soc+st.batteryKW*dt/maxFloat(e.params.CapacityKWh, epsilon), e.params.SOCMin, e.params.SOCMax)

		res.Points = append(res.Points, Point{
			Timestamp:         s.Timestamp,
			LoadKW:            s.LoadKW,
			Tier:              cell.Tier,
			Mode:              cell.Mode,
			Price:             price,
			LimitKW:           st.limitKW,
			Slot:              slot,
			BatteryKW:         st.batteryKW,
			GridKW:            st.gridKW,
			LoadWithStorageKW: s.LoadKW + st.gridKW,
			ChargeKWh:         st.chargeKWh,
			DischargeKWh:      st.dischargeKWh,
			Cost:              st.chargeKWh * price,
			Revenue:           st.dischargeKWh * price,
			SOC:               soc,
		})
	}

	res.FinalSOC = soc
	return res, nil
}

func (e *Engine) dayInfo(res *Result, ts time.Time) *DayInfo {
	key := model.DayKey(ts)
	if d, ok := res.Days[key]; ok {
		return d
	}
	sched := schedule.Resolve(ts, e.months, e.rules)
	mask, runs, merged := schedule.BuildMask(sched, e.params.MergeThresholdMin)
	d := &DayInfo{Schedule: sched, Mask: mask, Runs: runs, Merged: merged}
	res.Days[key] = d
	res.MergedSegments += merged
	return d
}

func (e *Engine) budgetFor(res *Result, day string, slot int) *windowBudget {
	key := WindowKey{Day: day, Slot: slot}
	if b, ok := res.Windows[key]; ok {
		return b
	}
	cap := e.params.CapacityKWh
	dod := e.params.EffectiveDoD()
	eff := e.params.Efficiency
	b := &windowBudget{DischargeTargetKWh: cap * dod * eff}
	if eff >= epsilon {
		b.ChargeTargetKWh = cap * dod / eff
	}
	res.Windows[key] = b
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
