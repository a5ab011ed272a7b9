package model

import (
	"errors"
	"math"
)

// MeteringMode selects how the demand ceiling for charging is derived.
type MeteringMode string

const (
	// MeteringMonthlyDemandMax caps charging at each month's historical
	// demand maximum.
	MeteringMonthlyDemandMax MeteringMode = "monthly_demand_max"
	// MeteringTransformerCapacity caps charging at the transformer rating
	// (kVA x power factor).
	MeteringTransformerCapacity MeteringMode = "transformer_capacity"
)

// StorageParams defines the physical and grid-connection parameters of the
// storage asset.
// Units:
// - CapacityKWh: kWh nameplate
// - CRate: 1/h, max battery power = CapacityKWh x CRate
// - Efficiency: single-side efficiency in (0,1]
// - DepthOfDischarge: usable fraction of nameplate in (0,1]
// - SOC bounds and InitialSOC: fraction 0..1
// - Reserves: kW held back from charge/discharge headroom
type StorageParams struct {
	CapacityKWh      float64 `json:"capacity_kwh" yaml:"capacity_kwh"`
	CRate            float64 `json:"c_rate" yaml:"c_rate"`
	Efficiency       float64 `json:"efficiency" yaml:"efficiency"`
	DepthOfDischarge float64 `json:"depth_of_discharge" yaml:"depth_of_discharge"`

	SOCMin     float64 `json:"soc_min" yaml:"soc_min"`
	SOCMax     float64 `json:"soc_max" yaml:"soc_max"`
	InitialSOC float64 `json:"initial_soc,omitempty" yaml:"initial_soc,omitempty"`

	ReserveChargeKW    float64 `json:"reserve_charge_kw" yaml:"reserve_charge_kw"`
	ReserveDischargeKW float64 `json:"reserve_discharge_kw" yaml:"reserve_discharge_kw"`

	Metering       MeteringMode `json:"metering" yaml:"metering"`
	TransformerKVA float64      `json:"transformer_kva,omitempty" yaml:"transformer_kva,omitempty"`
	PowerFactor    float64      `json:"power_factor,omitempty" yaml:"power_factor,omitempty"`

	MergeThresholdMin int `json:"merge_threshold_min" yaml:"merge_threshold_min"`
}

// MaxPowerKW is the battery power limit implied by capacity and C-rate.
func (p StorageParams) MaxPowerKW() float64 {
	return p.CapacityKWh * p.CRate
}

// EffectiveDoD is the usable depth actually reachable inside the SOC band.
func (p StorageParams) EffectiveDoD() float64 {
	d := math.Min(p.DepthOfDischarge, p.SOCMax-p.SOCMin)
	if d < 0 {
		return 0
	}
	return d
}

// StartSOC is the initial state of charge: the configured value clamped
// into the SOC band, or SOCMin when unset.
func (p StorageParams) StartSOC() float64 {
	s := p.InitialSOC
	if s <= 0 {
		s = p.SOCMin
	}
	if s < p.SOCMin {
		s = p.SOCMin
	}
	if s > p.SOCMax {
		s = p.SOCMax
	}
	return s
}

func (p StorageParams) Validate() error {
	if p.CapacityKWh <= 0 {
		return errors.New("capacity_kwh must be > 0")
	}
	if p.CRate <= 0 {
		return errors.New("c_rate must be > 0")
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return errors.New("efficiency must be in (0, 1]")
	}
	if p.DepthOfDischarge <= 0 || p.DepthOfDischarge > 1 {
		return errors.New("depth_of_discharge must be in (0, 1]")
	}
	if p.SOCMin < 0 || p.SOCMax > 1 || p.SOCMin >= p.SOCMax {
		return errors.New("SOC bounds must satisfy 0 <= soc_min < soc_max <= 1")
	}
	if p.ReserveChargeKW < 0 || p.ReserveDischargeKW < 0 {
		return errors.New("power reserves must be >= 0")
	}
	switch p.Metering {
	case MeteringMonthlyDemandMax, MeteringTransformerCapacity:
	case "":
		return errors.New("metering mode is required")
	default:
		return errors.New("metering must be monthly_demand_max or transformer_capacity")
	}
	if p.MergeThresholdMin < 0 {
		return errors.New("merge_threshold_min must be >= 0")
	}
	return nil
}
