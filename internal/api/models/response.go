package models

import (
	"storage-cycles/internal/cycles"
	"storage-cycles/internal/economics"
)

// CyclesResponse is the full rollup of one cycles run.
type CyclesResponse struct {
	RunID       string                `json:"run_id"`
	Year        cycles.YearResult     `json:"year"`
	Months      []cycles.MonthResult  `json:"months"`
	Days        []cycles.DayResult    `json:"days"`
	Diagnostics cycles.Diagnostics    `json:"diagnostics"`
}

// CurvesResponse is one day's original vs storage-adjusted view.
type CurvesResponse struct {
	RunID string `json:"run_id"`
	cycles.DayCurves
}

// CapacityResponse lists candidate outcomes and the one closest to the
// target cycle count.
type CapacityResponse struct {
	RunID   string                 `json:"run_id"`
	Results []cycles.CapacityResult `json:"results"`
	Best    cycles.CapacityResult   `json:"best"`
}

// EconomicsResponse wraps the economics evaluation.
type EconomicsResponse struct {
	RunID string `json:"run_id"`
	economics.Result
}

// ErrorResponse is the error envelope for every failing request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
