package simulate

import "storage-cycles/internal/model"

// epsilon guards every division in the pipeline. A denominator below it
// yields a zero scale, suppressing the flow instead of producing NaN/Inf.
const epsilon = 1e-9

// windowBudget is the running grid-side energy ledger of one window slot.
type windowBudget struct {
	ChargeTargetKWh    float64
	DischargeTargetKWh float64
	ChargeKWh          float64
	DischargeKWh       float64
}

// pointState carries one sample through the correction pipeline. BatteryKW
// is signed, positive while charging; ChargeKWh/DischargeKWh are grid-side
// energies derived from it.
type pointState struct {
	params  model.StorageParams
	dtHours float64

	loadKW  float64
	limitKW float64
	mode    model.Mode

	batteryKW    float64
	chargeKWh    float64
	dischargeKWh float64
	gridKW       float64

	budget *windowBudget
	soc    float64
}

// correction inspects the state and returns a scale factor in [0,1] for
// the battery power. Corrections never increase power.
type correction func(*pointState) float64

// pipeline is the fixed correction order: each step is a progressively
// tighter limit on the same quantity, so composition is plain iterated
// multiplication and no step is revisited.
var pipeline = []correction{
	transformerCap,
	antiExport,
	windowBudgetCap,
	socBound,
}

// basePower computes the uncorrected setpoint from the schedule cell.
func (s *pointState) basePower() {
	pMax := s.params.MaxPowerKW()
	switch s.mode {
	case model.ModeCharge:
		s.batteryKW = clampRange(s.limitKW-s.params.ReserveChargeKW-s.loadKW, 0, pMax)
	case model.ModeDischarge:
		s.batteryKW = -clampRange(s.loadKW-s.params.ReserveDischargeKW, 0, pMax)
	default:
		s.batteryKW = 0
	}
}

// deriveEnergies recomputes grid-side energies and grid power from the
// current battery power. DoD and efficiency convert battery-side to
// grid-side: charging divides by efficiency, discharging multiplies.
func (s *pointState) deriveEnergies() {
	s.chargeKWh = 0
	s.dischargeKWh = 0
	dod := s.params.EffectiveDoD()
	switch {
	case s.batteryKW > 0:
		if s.params.Efficiency < epsilon {
			s.batteryKW = 0
		} else {
			s.chargeKWh = s.batteryKW * s.dtHours * dod / s.params.Efficiency
		}
	case s.batteryKW < 0:
		s.dischargeKWh = -s.batteryKW * s.dtHours * dod * s.params.Efficiency
	}
	if s.dtHours < epsilon {
		s.gridKW = 0
		return
	}
	s.gridKW = (s.chargeKWh - s.dischargeKWh) / s.dtHours
}

// run applies the pipeline, re-deriving energies after every scale so the
// next correction sees the corrected flows.
func (s *pointState) run() {
	s.basePower()
	s.deriveEnergies()
	for _, c := range pipeline {
		f := c(s)
		if f >= 1 {
			continue
		}
		if f < 0 {
			f = 0
		}
		s.batteryKW *= f
		s.deriveEnergies()
	}
}

// transformerCap keeps load plus charging grid power under the transformer
// ceiling. Only active in transformer metering mode.
func transformerCap(s *pointState) float64 {
	if s.params.Metering != model.MeteringTransformerCapacity || s.batteryKW <= 0 {
		return 1
	}
	headroom := s.limitKW - s.loadKW
	if headroom <= 0 {
		return 0
	}
	if s.gridKW <= headroom {
		return 1
	}
	if s.gridKW < epsilon {
		return 0
	}
	return headroom / s.gridKW
}

// antiExport caps discharge so the site never exports: grid draw after
// discharge stays at or above zero, keeping the discharge reserve intact.
func antiExport(s *pointState) float64 {
	if s.batteryKW >= 0 {
		return 1
	}
	allowed := s.loadKW - s.params.ReserveDischargeKW
	if allowed < 0 {
		allowed = 0
	}
	export := -s.gridKW
	if export <= allowed {
		return 1
	}
	if export < epsilon {
		return 0
	}
	return allowed / export
}

// windowBudgetCap enforces the window's remaining grid-side energy
// allowance for the current mode.
func windowBudgetCap(s *pointState) float64 {
	if s.budget == nil || s.batteryKW == 0 {
		return 1
	}
	var used, target, e float64
	if s.batteryKW > 0 {
		used, target, e = s.budget.ChargeKWh, s.budget.ChargeTargetKWh, s.chargeKWh
	} else {
		used, target, e = s.budget.DischargeKWh, s.budget.DischargeTargetKWh, s.dischargeKWh
	}
	allowance := target - used
	if allowance <= 0 {
		return 0
	}
	if e <= allowance {
		return 1
	}
	if e < epsilon {
		return 0
	}
	return allowance / e
}

// socBound scales power so the SOC delta lands exactly on the band edge
// instead of overshooting it.
func socBound(s *pointState) float64 {
	if s.batteryKW == 0 {
		return 1
	}
	if s.params.CapacityKWh < epsilon {
		return 0
	}
	delta := s.batteryKW * s.dtHours / s.params.CapacityKWh
	if s.batteryKW > 0 {
		room := s.params.SOCMax - s.soc
		if room <= 0 {
			return 0
		}
		if delta <= room {
			return 1
		}
		if delta < epsilon {
			return 0
		}
		return room / delta
	}
	room := s.soc - s.params.SOCMin
	if room <= 0 {
		return 0
	}
	if -delta <= room {
		return 1
	}
	if -delta < epsilon {
		return 0
	}
	return room / -delta
}

func clampRange(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
