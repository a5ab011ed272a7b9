package cycles

import (
	"fmt"
	"math"
	"sync"

	"storage-cycles/internal/model"
	"storage-cycles/internal/simulate"
)

// CapacityResult is one candidate capacity's outcome.
type CapacityResult struct {
	CapacityKWh      float64 `json:"capacity_kwh"`
	AnnualizedCycles float64 `json:"annualized_cycles"`
	Profit           float64 `json:"profit"`

	Err error `json:"-"`
}

// CompareCapacities runs the same series at each candidate capacity.
// Every run owns its SOC trajectory and window ledgers, so the runs are
// independent and execute concurrently. Results keep the input order.
func CompareCapacities(samples []model.LoadSample, base model.StorageParams,
	months model.MonthlySchedule, rules []model.DateRule, prices model.PriceTable,
	capacities []float64) []CapacityResult {

	out := make([]CapacityResult, len(capacities))
	var wg sync.WaitGroup
	for i, c := range capacities {
		wg.Add(1)
		go func(i int, capKWh float64) {
			defer wg.Done()
			p := base
			p.CapacityKWh = capKWh
			out[i] = CapacityResult{CapacityKWh: capKWh}
			res, err := simulate.New(p, months, rules, prices).Run(samples)
			if err != nil {
				out[i].Err = err
				return
			}
			sum := Aggregate(res, p, prices)
			out[i].AnnualizedCycles = sum.Year.AnnualizedCycles
			out[i].Profit = sum.Year.Profit.Profit
		}(i, c)
	}
	wg.Wait()
	return out
}

// FindCapacityForTarget picks the candidate whose annualized cycle count
// is closest to the target.
func FindCapacityForTarget(samples []model.LoadSample, base model.StorageParams,
	months model.MonthlySchedule, rules []model.DateRule, prices model.PriceTable,
	capacities []float64, targetCycles float64) (CapacityResult, error) {

	if len(capacities) == 0 {
		return CapacityResult{}, fmt.Errorf("no candidate capacities")
	}
	results := CompareCapacities(samples, base, months, rules, prices, capacities)

	best := -1
	bestDist := math.Inf(1)
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		d := math.Abs(r.AnnualizedCycles - targetCycles)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return CapacityResult{}, fmt.Errorf("all candidate runs failed: %w", results[0].Err)
	}
	return results[best], nil
}
