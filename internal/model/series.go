package model

import (
	"sort"
	"time"
)

// LoadSample is one point of the historical load series.
type LoadSample struct {
	Timestamp time.Time `json:"timestamp"`
	LoadKW    float64   `json:"load_kw"`
}

// SortSamples orders samples by timestamp ascending, in place.
func SortSamples(samples []LoadSample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}

// FilterDay returns the samples falling on the calendar date of day,
// preserving order.
func FilterDay(samples []LoadSample, day time.Time) []LoadSample {
	key := DayKey(day)
	out := make([]LoadSample, 0, 96)
	for _, s := range samples {
		if DayKey(s.Timestamp) == key {
			out = append(out, s)
		}
	}
	return out
}
