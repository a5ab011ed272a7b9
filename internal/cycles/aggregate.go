package cycles

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"storage-cycles/internal/model"
	"storage-cycles/internal/schedule"
	"storage-cycles/internal/simulate"
)

// ProfitBreakdown is the money and energy rolled up at one level.
type ProfitBreakdown struct {
	Revenue            float64 `json:"revenue"`
	Cost               float64 `json:"cost"`
	Profit             float64 `json:"profit"`
	ChargeEnergyKWh    float64 `json:"charge_energy_kwh"`
	DischargeEnergyKWh float64 `json:"discharge_energy_kwh"`
}

// DayWindow is one window slot's contribution to a day.
type DayWindow struct {
	Slot               int     `json:"slot"`
	ChargeKWh          float64 `json:"charge_kwh"`
	DischargeKWh       float64 `json:"discharge_kwh"`
	ActualChargeKWh    float64 `json:"actual_charge_kwh"`
	ActualDischargeKWh float64 `json:"actual_discharge_kwh"`
	Cycles             float64 `json:"cycles"`
}

type DayResult struct {
	Date    string          `json:"date"`
	Valid   bool            `json:"valid"`
	Cycles  float64         `json:"cycles"`
	Windows []DayWindow     `json:"windows"`
	Profit  ProfitBreakdown `json:"profit"`
}

type MonthResult struct {
	Month     string  `json:"month"`
	Cycles    float64 `json:"cycles"`
	ValidDays int     `json:"valid_days"`
	TotalDays int     `json:"total_days"`

	// Profit follows the monthly policy: discharge energy at the dearer
	// of spike/peak, charge energy at the cheaper of valley/deep. This is
	// a modeling approximation, not a per-interval settlement.
	Profit ProfitBreakdown `json:"profit"`

	// EquivalentProfit extrapolates the month's profit from its valid
	// days to its calendar days; absent when no day was valid.
	EquivalentProfit *float64 `json:"equivalent_profit,omitempty"`
}

type YearResult struct {
	Cycles           float64         `json:"cycles"`
	ValidDays        int             `json:"valid_days"`
	AnnualizedCycles float64         `json:"annualized_cycles"`
	Profit           ProfitBreakdown `json:"profit"`
}

// WindowDebug is one diagnostic row describing a window side's headroom
// and energy under the window-average method.
type WindowDebug struct {
	Date      string  `json:"date"`
	Slot      int     `json:"slot"`
	Kind      string  `json:"kind"`
	Points    int     `json:"points"`
	Hours     int     `json:"hours"`
	AvgLoadKW float64 `json:"avg_load_kw"`
	AllowKW   float64 `json:"allow_kw"`
	BaseKWh   float64 `json:"base_kwh"`
	GridKWh   float64 `json:"grid_kwh"`
	FullRatio float64 `json:"full_ratio"`
}

// DayRuns lists one day's schedule runs as the mask builder saw them.
type DayRuns struct {
	Date string             `json:"date"`
	Runs []schedule.HourRun `json:"runs"`
}

type Diagnostics struct {
	MergedSegments     int                `json:"merged_segments"`
	MonthlyDemandMaxKW map[string]float64 `json:"monthly_demand_max_kw"`
	Notes              []string           `json:"notes,omitempty"`
	Runs               []DayRuns          `json:"runs,omitempty"`
	Windows            []WindowDebug      `json:"windows,omitempty"`
}

// Summary is the full cycle/revenue rollup of one simulation.
type Summary struct {
	Year        YearResult    `json:"year"`
	Months      []MonthResult `json:"months"`
	Days        []DayResult   `json:"days"`
	Diagnostics Diagnostics   `json:"diagnostics"`
}

// Aggregate rolls per-point simulation output into day, month and year
// results. Days are processed in ascending date order because the
// reconciliation SOC carries across day boundaries.
func Aggregate(res *simulate.Result, p model.StorageParams, prices model.PriceTable) *Summary {
	byDay := map[string][]simulate.Point{}
	for _, pt := range res.Points {
		key := model.DayKey(pt.Timestamp)
		byDay[key] = append(byDay[key], pt)
	}
	dayKeys := make([]string, 0, len(byDay))
	for k := range byDay {
		dayKeys = append(dayKeys, k)
	}
	sort.Strings(dayKeys)

	capKWh := p.CapacityKWh
	socEnergy := p.StartSOC() * capKWh
	minEnergy := p.SOCMin * capKWh
	maxEnergy := p.SOCMax * capKWh

	days := make([]DayResult, 0, len(dayKeys))
	for _, key := range dayKeys {
		pts := byDay[key]
		day := DayResult{Date: key}
		for _, pt := range pts {
			if pt.LoadKW > 0 {
				day.Valid = true
			}
			day.Profit.Revenue += pt.Revenue
			day.Profit.Cost += pt.Cost
			day.Profit.ChargeEnergyKWh += pt.ChargeKWh
			day.Profit.DischargeEnergyKWh += pt.DischargeKWh
		}
		day.Profit.Profit = day.Profit.Revenue - day.Profit.Cost

		for slot := 1; slot <= 2; slot++ {
			we := res.Window(key, slot)
			if we.ChargeKWh == 0 && we.DischargeKWh == 0 {
				continue
			}
			w := DayWindow{
				Slot:         slot,
				ChargeKWh:    math.Min(we.ChargeKWh, 2*capKWh),
				DischargeKWh: math.Min(we.DischargeKWh, 2*capKWh),
			}
			w.ActualChargeKWh = math.Min(w.ChargeKWh, maxEnergy-socEnergy)
			if w.ActualChargeKWh < 0 {
				w.ActualChargeKWh = 0
			}
			socEnergy += w.ActualChargeKWh
			w.ActualDischargeKWh = math.Min(w.DischargeKWh, socEnergy-minEnergy)
			if w.ActualDischargeKWh < 0 {
				w.ActualDischargeKWh = 0
			}
			socEnergy -= w.ActualDischargeKWh

			if capKWh > 0 {
				cr := math.Min(w.ActualChargeKWh/capKWh, 1)
				dr := math.Min(w.ActualDischargeKWh/capKWh, 1)
				w.Cycles = math.Min(cr, dr)
			}
			day.Cycles += w.Cycles
			day.Windows = append(day.Windows, w)
		}
		days = append(days, day)
	}

	months := rollupMonths(days, prices)

	year := YearResult{}
	for _, m := range months {
		year.Cycles += m.Cycles
		year.ValidDays += m.ValidDays
		year.Profit.Revenue += m.Profit.Revenue
		year.Profit.Cost += m.Profit.Cost
		year.Profit.ChargeEnergyKWh += m.Profit.ChargeEnergyKWh
		year.Profit.DischargeEnergyKWh += m.Profit.DischargeEnergyKWh
	}
	year.Profit.Profit = year.Profit.Revenue - year.Profit.Cost
	if year.ValidDays > 0 {
		year.AnnualizedCycles = year.Cycles / float64(year.ValidDays) * 365
	}

	return &Summary{
		Year:   year,
		Months: months,
		Days:   days,
		Diagnostics: Diagnostics{
			MergedSegments:     res.MergedSegments,
			MonthlyDemandMaxKW: res.Limits.MonthlyDemandMaxKW,
			Notes:              res.Limits.Notes,
			Runs:               dayRuns(res),
			Windows:            windowDebug(res, p),
		},
	}
}

func rollupMonths(days []DayResult, prices model.PriceTable) []MonthResult {
	byMonth := map[string]*MonthResult{}
	var keys []string
	for _, d := range days {
		key := d.Date[:7]
		m, ok := byMonth[key]
		if !ok {
			m = &MonthResult{Month: key}
			byMonth[key] = m
			keys = append(keys, key)
		}
		m.Cycles += d.Cycles
		m.TotalDays++
		if d.Valid {
			m.ValidDays++
		}
		m.Profit.ChargeEnergyKWh += d.Profit.ChargeEnergyKWh
		m.Profit.DischargeEnergyKWh += d.Profit.DischargeEnergyKWh
	}
	sort.Strings(keys)

	out := make([]MonthResult, 0, len(keys))
	for _, key := range keys {
		m := byMonth[key]
		t, err := time.Parse("2006-01", key)
		if err == nil {
			tp := prices.Month(t.Month())
			m.Profit.Revenue = m.Profit.DischargeEnergyKWh * tp.Sell()
			m.Profit.Cost = m.Profit.ChargeEnergyKWh * tp.Buy()
			m.Profit.Profit = m.Profit.Revenue - m.Profit.Cost
			if m.ValidDays > 0 {
				eq := m.Profit.Profit / float64(m.ValidDays) * float64(daysInMonth(t))
				m.EquivalentProfit = &eq
			}
		}
		out = append(out, *m)
	}
	return out
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -1).Day()
}

func dayRuns(res *simulate.Result) []DayRuns {
	keys := make([]string, 0, len(res.Days))
	for k := range res.Days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]DayRuns, 0, len(keys))
	for _, k := range keys {
		if runs := res.Days[k].Runs; len(runs) > 0 {
			out = append(out, DayRuns{Date: k, Runs: runs})
		}
	}
	return out
}

// windowDebug reports the window-average view of each window side: the
// headroom an average point of the window had and the grid energy that
// headroom converts to.
func windowDebug(res *simulate.Result, p model.StorageParams) []WindowDebug {
	type sideKey struct {
		day  string
		slot int
		kind string
	}
	loads := map[sideKey][]float64{}
	hourSets := map[sideKey]map[int]bool{}
	var keys []sideKey
	for _, pt := range res.Points {
		if pt.Slot == 0 {
			continue
		}
		kind := "charge"
		if pt.Mode == model.ModeDischarge {
			kind = "discharge"
		}
		k := sideKey{day: model.DayKey(pt.Timestamp), slot: pt.Slot, kind: kind}
		if _, ok := loads[k]; !ok {
			keys = append(keys, k)
			hourSets[k] = map[int]bool{}
		}
		loads[k] = append(loads[k], pt.LoadKW)
		hourSets[k][pt.Timestamp.Hour()] = true
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.day != b.day {
			return a.day < b.day
		}
		if a.slot != b.slot {
			return a.slot < b.slot
		}
		return a.kind < b.kind
	})

	dod := p.EffectiveDoD()
	out := make([]WindowDebug, 0, len(keys))
	for _, k := range keys {
		ls := loads[k]
		avg := stat.Mean(ls, nil)
		t, err := time.Parse("2006-01-02", k.day)
		if err != nil {
			continue
		}
		limit := res.Limits.LimitFor(t)
		hours := len(hourSets[k])
		row := WindowDebug{
			Date:      k.day,
			Slot:      k.slot,
			Kind:      k.kind,
			Points:    len(ls),
			Hours:     hours,
			AvgLoadKW: avg,
		}
		if k.kind == "charge" {
			row.AllowKW = math.Max(limit-p.ReserveChargeKW-avg, 0)
			row.BaseKWh = row.AllowKW * float64(hours)
			if p.Efficiency > 0 {
				row.GridKWh = row.BaseKWh * dod / p.Efficiency
			}
		} else {
			row.AllowKW = math.Max(avg-p.ReserveDischargeKW, 0)
			row.BaseKWh = row.AllowKW * float64(hours)
			row.GridKWh = row.BaseKWh * dod * p.Efficiency
		}
		if p.CapacityKWh > 0 {
			row.FullRatio = math.Min(row.GridKWh/p.CapacityKWh, 1)
		}
		out = append(out, row)
	}
	return out
}
