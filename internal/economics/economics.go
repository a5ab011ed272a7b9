// Package economics builds multi-year project cashflows for a storage
// asset and solves payback, IRR and static LCOE screening.
package economics

import (
	"errors"
	"math"
)

// Input are the project assumptions. Per-kWh-year cost figures follow the
// quoting convention of the source data: they are scaled by installed
// capacity divided by ten.
type Input struct {
	FirstYearRevenue float64 `json:"first_year_revenue"`
	HorizonYears     int     `json:"horizon_years"`

	CapacityKWh      float64 `json:"capacity_kwh"`
	CapexPerWh       float64 `json:"capex_per_wh"`
	OMCostPerKWhYear float64 `json:"om_cost_per_kwh_year"`

	FirstYearDecay  float64 `json:"first_year_decay"`
	SubsequentDecay float64 `json:"subsequent_decay"`

	// Optional one-time cell replacement.
	ReplacementYear    int     `json:"replacement_year,omitempty"`
	ReplacementCost    float64 `json:"replacement_cost,omitempty"`
	SecondPhaseRevenue float64 `json:"second_phase_revenue,omitempty"`

	// Optional first-year energy throughput enables LCOE screening.
	FirstYearEnergyKWh float64 `json:"first_year_energy_kwh,omitempty"`
	LCOEPassThreshold  float64 `json:"lcoe_pass_threshold,omitempty"`
}

const defaultLCOEPassThreshold = 1.5

func (in *Input) Validate() error {
	if in.CapacityKWh <= 0 {
		return errors.New("capacity_kwh must be > 0")
	}
	if in.CapexPerWh <= 0 {
		return errors.New("capex_per_wh must be > 0")
	}
	if in.HorizonYears < 1 || in.HorizonYears > 50 {
		return errors.New("horizon_years must be in [1, 50]")
	}
	if in.FirstYearDecay < 0 || in.FirstYearDecay >= 1 {
		return errors.New("first_year_decay must be in [0, 1)")
	}
	if in.SubsequentDecay < 0 || in.SubsequentDecay >= 1 {
		return errors.New("subsequent_decay must be in [0, 1)")
	}
	if in.ReplacementYear < 0 || in.ReplacementYear > in.HorizonYears {
		return errors.New("replacement_year must be within the horizon")
	}
	return nil
}

// CapexTotal is the upfront capital cost: per-Wh price times installed
// capacity in Wh.
func (in *Input) CapexTotal() float64 {
	return in.CapexPerWh * in.CapacityKWh * 1000
}

// CashflowYear is one project year. Cumulative values accumulate forward
// from year 1.
type CashflowYear struct {
	Year            int     `json:"year"`
	Revenue         float64 `json:"revenue"`
	OMCost          float64 `json:"om_cost"`
	ReplacementCost float64 `json:"replacement_cost"`
	NetCashflow     float64 `json:"net_cashflow"`
	CumulativeNet   float64 `json:"cumulative_net"`
}

// Result is the economics evaluation. Absent values (IRR that does not
// converge, payback never reached, LCOE without energy input) are nil,
// never zero.
type Result struct {
	CapexTotal float64        `json:"capex_total"`
	Cashflows  []CashflowYear `json:"cashflows"`

	StaticPaybackYears *float64 `json:"static_payback_years"`
	IRR                *float64 `json:"irr"`

	StaticLCOE    *float64 `json:"static_lcoe,omitempty"`
	RevenuePerKWh *float64 `json:"revenue_per_kwh,omitempty"`
	LCOERatio     *float64 `json:"lcoe_ratio,omitempty"`
	LCOEPass      *bool    `json:"lcoe_pass,omitempty"`
}

// BuildCashflows expands the assumptions into one CashflowYear per
// project year. Revenue decays by the first-year rate once, then by the
// subsequent rate per year; a cell replacement switches the revenue base
// and restarts the decay origin at the replacement year.
func BuildCashflows(in Input) []CashflowYear {
	scale := in.CapacityKWh / 10
	om := in.OMCostPerKWhYear * scale

	base := in.FirstYearRevenue
	phaseStart := 1
	cum := 0.0
	out := make([]CashflowYear, 0, in.HorizonYears)
	for y := 1; y <= in.HorizonYears; y++ {
		if in.ReplacementYear > 0 && y == in.ReplacementYear && in.SecondPhaseRevenue > 0 {
			base = in.SecondPhaseRevenue
			phaseStart = y
		}
		rev := base * (1 - in.FirstYearDecay) * math.Pow(1-in.SubsequentDecay, float64(y-phaseStart))
		repl := 0.0
		if in.ReplacementYear > 0 && y == in.ReplacementYear {
			repl = in.ReplacementCost * scale
		}
		net := rev - om - repl
		cum += net
		out = append(out, CashflowYear{
			Year:            y,
			Revenue:         round2(rev),
			OMCost:          round2(om),
			ReplacementCost: round2(repl),
			NetCashflow:     round2(net),
			CumulativeNet:   round2(cum),
		})
	}
	return out
}

// StaticPayback returns the year count at which cumulative net cashflow
// recovers capex, linearly interpolated inside the recovery year, or nil
// when capex is never recovered within the horizon.
func StaticPayback(capex float64, flows []CashflowYear) *float64 {
	prev := 0.0
	for _, f := range flows {
		if f.CumulativeNet >= capex {
			if f.NetCashflow <= 0 {
				p := float64(f.Year)
				return &p
			}
			p := float64(f.Year-1) + (capex-prev)/f.NetCashflow
			return &p
		}
		prev = f.CumulativeNet
	}
	return nil
}

// SolveIRR finds the rate discounting cashflows to zero NPV. cashflows[0]
// is the year-0 outlay (negative). Newton from 0.1 is tried first;
// bisection on [-0.99, 2.0] is the fallback. nil when neither converges.
func SolveIRR(cashflows []float64) *float64 {
	if r, ok := irrNewton(cashflows); ok {
		r = round6(r)
		return &r
	}
	if r, ok := irrBisection(cashflows, -0.99, 2.0); ok {
		r = round6(r)
		return &r
	}
	return nil
}

const (
	irrTolerance  = 1e-6
	irrIterations = 100
)

func npv(rate float64, cashflows []float64) float64 {
	v := 0.0
	for t, cf := range cashflows {
		v += cf / math.Pow(1+rate, float64(t))
	}
	return v
}

func npvDerivative(rate float64, cashflows []float64) float64 {
	d := 0.0
	for t, cf := range cashflows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

func irrNewton(cashflows []float64) (float64, bool) {
	r := 0.1
	for i := 0; i < irrIterations; i++ {
		f := npv(r, cashflows)
		if math.Abs(f) < irrTolerance {
			return r, true
		}
		d := npvDerivative(r, cashflows)
		if math.Abs(d) < 1e-12 {
			return 0, false
		}
		next := r - f/d
		// Keep the iterate inside a sane rate band.
		if next < -0.99 {
			next = -0.99
		}
		if next > 10 {
			next = 10
		}
		if math.Abs(next-r) < 1e-10 {
			r = next
			break
		}
		r = next
	}
	if math.Abs(npv(r, cashflows)) < irrTolerance {
		return r, true
	}
	return 0, false
}

func irrBisection(cashflows []float64, lo, hi float64) (float64, bool) {
	flo := npv(lo, cashflows)
	fhi := npv(hi, cashflows)
	if flo*fhi > 0 {
		return 0, false
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fm := npv(mid, cashflows)
		if math.Abs(fm) < irrTolerance || (hi-lo)/2 < 1e-9 {
			return mid, true
		}
		if flo*fm < 0 {
			hi = mid
		} else {
			lo = mid
			flo = fm
		}
	}
	return 0, false
}

// Compute runs the full evaluation.
func Compute(in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.LCOEPassThreshold <= 0 {
		in.LCOEPassThreshold = defaultLCOEPassThreshold
	}

	capex := in.CapexTotal()
	flows := BuildCashflows(in)

	cfs := make([]float64, 0, len(flows)+1)
	cfs = append(cfs, -capex)
	for _, f := range flows {
		cfs = append(cfs, f.NetCashflow)
	}

	res := &Result{
		CapexTotal:         capex,
		Cashflows:          flows,
		StaticPaybackYears: StaticPayback(capex, flows),
		IRR:                SolveIRR(cfs),
	}

	if in.FirstYearEnergyKWh > 0 {
		res.applyStaticMetrics(in, capex, flows)
	}
	return res, nil
}

// applyStaticMetrics fills the LCOE screening block: average annual
// energy and revenue over the horizon under the same decay curve.
func (r *Result) applyStaticMetrics(in Input, capex float64, flows []CashflowYear) {
	n := float64(in.HorizonYears)
	totalEnergy := 0.0
	totalRevenue := 0.0
	for y := 1; y <= in.HorizonYears; y++ {
		totalEnergy += in.FirstYearEnergyKWh * (1 - in.FirstYearDecay) * math.Pow(1-in.SubsequentDecay, float64(y-1))
		totalRevenue += flows[y-1].Revenue
	}
	avgEnergy := totalEnergy / n
	if avgEnergy <= 0 {
		return
	}
	avgRevenue := totalRevenue / n

	lcoe := capex / (avgEnergy * n)
	perKWh := avgRevenue / avgEnergy
	ratio := 0.0
	if lcoe > 0 {
		ratio = perKWh / lcoe
	}
	pass := ratio >= in.LCOEPassThreshold

	r.StaticLCOE = &lcoe
	r.RevenuePerKWh = &perKWh
	r.LCOERatio = &ratio
	r.LCOEPass = &pass
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round6(x float64) float64 { return math.Round(x*1e6) / 1e6 }
