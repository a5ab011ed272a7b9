package model

import (
	"math"
	"time"
)

// TierPrices maps every tier to a price (currency per kWh). The closed
// index means an unknown tier cannot occur at lookup time.
type TierPrices [numTiers]float64

// DefaultTierPrices are the engine defaults used wherever a month's table
// leaves a tier unset.
var DefaultTierPrices = TierPrices{
	TierFlat:   0.65,
	TierSpike:  1.20,
	TierPeak:   1.00,
	TierValley: 0.35,
	TierDeep:   0.30,
}

// For returns the price for tier t.
func (tp TierPrices) For(t Tier) float64 {
	if t < 0 || t >= numTiers {
		return tp[TierFlat]
	}
	return tp[t]
}

// Buy is the charging price used by the monthly profit policy:
// the cheaper of the valley and deep tariffs.
func (tp TierPrices) Buy() float64 {
	return math.Min(tp[TierValley], tp[TierDeep])
}

// Sell is the discharging price used by the monthly profit policy:
// the dearer of the spike and peak tariffs.
func (tp TierPrices) Sell() float64 {
	return math.Max(tp[TierSpike], tp[TierPeak])
}

// PriceTable holds one TierPrices per calendar month, index 0 = January.
type PriceTable [12]TierPrices

// DefaultPriceTable fills every month with the engine default tariffs.
func DefaultPriceTable() PriceTable {
	var pt PriceTable
	for i := range pt {
		pt[i] = DefaultTierPrices
	}
	return pt
}

// Month returns the prices in effect for m.
func (pt PriceTable) Month(m time.Month) TierPrices {
	return pt[int(m)-1]
}
