package cycles

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"storage-cycles/internal/model"
	"storage-cycles/internal/simulate"
)

// TierSplit is one tier's share of a day's grid energy and billing, after
// storage.
type TierSplit struct {
	Tier      model.Tier `json:"tier"`
	EnergyKWh float64    `json:"energy_kwh"`
	Billing   float64    `json:"billing"`
}

// DayCurves is the one-day view served by the curves endpoint: the
// original and storage-adjusted load curves plus the day's summary.
type DayCurves struct {
	Date string `json:"date"`

	Timestamps        []time.Time `json:"timestamps"`
	LoadKW            []float64   `json:"load_kw"`
	LoadWithStorageKW []float64   `json:"load_with_storage_kw"`
	SOC               []float64   `json:"soc"`

	PeakLoadKW        float64 `json:"peak_load_kw"`
	PeakWithStorageKW float64 `json:"peak_with_storage_kw"`
	DemandReductionKW float64 `json:"demand_reduction_kw"`

	Tiers  []TierSplit     `json:"tiers"`
	Profit ProfitBreakdown `json:"profit"`
}

// BuildDayCurves extracts one calendar date from a simulation result.
func BuildDayCurves(res *simulate.Result, date time.Time) (*DayCurves, error) {
	key := model.DayKey(date)
	var pts []simulate.Point
	for _, pt := range res.Points {
		if model.DayKey(pt.Timestamp) == key {
			pts = append(pts, pt)
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no samples on %s", key)
	}

	dc := &DayCurves{Date: key}
	splits := map[model.Tier]*TierSplit{}
	dt := 0.25
	for i, pt := range pts {
		if i+1 < len(pts) {
			if d := pts[i+1].Timestamp.Sub(pt.Timestamp).Hours(); d > 0 && d <= 1 {
				dt = d
			}
		}
		dc.Timestamps = append(dc.Timestamps, pt.Timestamp)
		dc.LoadKW = append(dc.LoadKW, pt.LoadKW)
		dc.LoadWithStorageKW = append(dc.LoadWithStorageKW, pt.LoadWithStorageKW)
		dc.SOC = append(dc.SOC, pt.SOC)

		s, ok := splits[pt.Tier]
		if !ok {
			s = &TierSplit{Tier: pt.Tier}
			splits[pt.Tier] = s
		}
		e := pt.LoadWithStorageKW * dt
		s.EnergyKWh += e
		s.Billing += e * pt.Price

		dc.Profit.Revenue += pt.Revenue
		dc.Profit.Cost += pt.Cost
		dc.Profit.ChargeEnergyKWh += pt.ChargeKWh
		dc.Profit.DischargeEnergyKWh += pt.DischargeKWh
	}
	dc.Profit.Profit = dc.Profit.Revenue - dc.Profit.Cost

	for t := model.Tier(0); int(t) < 5; t++ {
		if s, ok := splits[t]; ok {
			dc.Tiers = append(dc.Tiers, *s)
		}
	}

	dc.PeakLoadKW = floats.Max(dc.LoadKW)
	dc.PeakWithStorageKW = floats.Max(dc.LoadWithStorageKW)
	dc.DemandReductionKW = dc.PeakLoadKW - dc.PeakWithStorageKW
	return dc, nil
}
