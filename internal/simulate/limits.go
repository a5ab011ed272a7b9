package simulate

import (
	"fmt"
	"sort"
	"time"

	"storage-cycles/internal/model"
)

// LimitInfo is the demand ceiling actually applied while charging, plus
// the per-month demand maxima used for diagnostics.
type LimitInfo struct {
	Mode               model.MeteringMode `json:"mode"`
	MonthlyDemandMaxKW map[string]float64 `json:"monthly_demand_max_kw"`
	TransformerLimitKW float64            `json:"transformer_limit_kw,omitempty"`
	Notes              []string           `json:"notes,omitempty"`
}

// BuildLimitInfo derives the ceiling from the load series and metering
// mode. Transformer mode without a usable kVA/power-factor pair falls back
// to monthly demand maxima with a note.
func BuildLimitInfo(samples []model.LoadSample, p model.StorageParams) LimitInfo {
	info := LimitInfo{
		Mode:               p.Metering,
		MonthlyDemandMaxKW: map[string]float64{},
	}
	for _, s := range samples {
		key := model.MonthKey(s.Timestamp)
		if s.LoadKW > info.MonthlyDemandMaxKW[key] {
			info.MonthlyDemandMaxKW[key] = s.LoadKW
		}
	}
	if p.Metering == model.MeteringTransformerCapacity {
		if p.TransformerKVA > 0 && p.PowerFactor > 0 {
			info.TransformerLimitKW = p.TransformerKVA * p.PowerFactor
		} else {
			info.Mode = model.MeteringMonthlyDemandMax
			info.Notes = append(info.Notes,
				fmt.Sprintf("transformer metering requested but kva=%.1f pf=%.2f unusable, using monthly demand max",
					p.TransformerKVA, p.PowerFactor))
		}
	}
	return info
}

// LimitFor returns the ceiling in effect at ts.
func (li LimitInfo) LimitFor(ts time.Time) float64 {
	if li.Mode == model.MeteringTransformerCapacity {
		return li.TransformerLimitKW
	}
	return li.MonthlyDemandMaxKW[model.MonthKey(ts)]
}

// Months lists the month keys with a recorded demand max, ascending.
func (li LimitInfo) Months() []string {
	keys := make([]string, 0, len(li.MonthlyDemandMaxKW))
	for k := range li.MonthlyDemandMaxKW {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
