package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storage-cycles/internal/api/models"
	"storage-cycles/internal/cycles"
	"storage-cycles/internal/data"
	"storage-cycles/internal/metrics"
	"storage-cycles/internal/model"
	"storage-cycles/internal/simulate"
)

// SimulationHandler serves the cycles, curves and capacity endpoints.
type SimulationHandler struct {
	log  zerolog.Logger
	sink *metrics.Sink
}

func NewSimulationHandler(log zerolog.Logger, sink *metrics.Sink) *SimulationHandler {
	return &SimulationHandler{log: log, sink: sink}
}

// ComputeCycles handles POST /api/v1/storage/cycles.
func (h *SimulationHandler) ComputeCycles(c *gin.Context) {
	var req models.SimulateRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	start := time.Now()
	res, summary, err := h.run(&req)
	if err != nil {
		h.observe("cycles", "error", start, 0)
		internalError(c, "SIMULATION_ERROR", err)
		return
	}
	h.observe("cycles", "ok", start, len(res.Points))

	runID := uuid.NewString()
	h.log.Info().
		Str("run_id", runID).
		Int("points", len(res.Points)).
		Float64("annualized_cycles", summary.Year.AnnualizedCycles).
		Msg("cycles computed")

	c.JSON(http.StatusOK, models.CyclesResponse{
		RunID:       runID,
		Year:        summary.Year,
		Months:      summary.Months,
		Days:        summary.Days,
		Diagnostics: summary.Diagnostics,
	})
}

// ComputeCurves handles POST /api/v1/storage/curves.
func (h *SimulationHandler) ComputeCurves(c *gin.Context) {
	var req models.CurvesRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	// Restrict the series to the requested date so the curves reflect a
	// fresh SOC trajectory for that day.
	req.Samples = model.FilterDay(req.Samples, date)
	if len(req.Samples) == 0 {
		badRequest(c, "INVALID_INPUT", errNoSamplesOn(req.Date))
		return
	}

	start := time.Now()
	res, _, err := h.run(&req.SimulateRequest)
	if err != nil {
		h.observe("curves", "error", start, 0)
		internalError(c, "SIMULATION_ERROR", err)
		return
	}
	dc, err := cycles.BuildDayCurves(res, date)
	if err != nil {
		h.observe("curves", "error", start, len(res.Points))
		badRequest(c, "INVALID_INPUT", err)
		return
	}
	h.observe("curves", "ok", start, len(res.Points))

	c.JSON(http.StatusOK, models.CurvesResponse{
		RunID:     uuid.NewString(),
		DayCurves: *dc,
	})
}

// CompareCapacities handles POST /api/v1/storage/capacity.
func (h *SimulationHandler) CompareCapacities(c *gin.Context) {
	var req models.CapacityRequest
	if !h.bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}
	if len(req.Capacities) == 0 {
		badRequest(c, "INVALID_INPUT", errNoCapacities)
		return
	}

	samples := req.Samples
	if req.Resample {
		samples = data.Resample15m(samples)
	}

	start := time.Now()
	results := cycles.CompareCapacities(samples, req.Storage,
		req.MonthlySchedule(), req.Rules(), req.PriceTable(), req.Capacities)
	best, err := cycles.FindCapacityForTarget(samples, req.Storage,
		req.MonthlySchedule(), req.Rules(), req.PriceTable(), req.Capacities, req.TargetCycles)
	if err != nil {
		h.observe("capacity", "error", start, 0)
		internalError(c, "SIMULATION_ERROR", err)
		return
	}
	h.observe("capacity", "ok", start, len(samples)*len(req.Capacities))

	c.JSON(http.StatusOK, models.CapacityResponse{
		RunID:   uuid.NewString(),
		Results: results,
		Best:    best,
	})
}

func (h *SimulationHandler) run(req *models.SimulateRequest) (*simulate.Result, *cycles.Summary, error) {
	samples := req.Samples
	if req.Resample {
		samples = data.Resample15m(samples)
	}
	prices := req.PriceTable()
	engine := simulate.New(req.Storage, req.MonthlySchedule(), req.Rules(), prices)
	res, err := engine.Run(samples)
	if err != nil {
		return nil, nil, err
	}
	return res, cycles.Aggregate(res, req.Storage, prices), nil
}

func (h *SimulationHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return false
	}
	return true
}

func (h *SimulationHandler) observe(endpoint, status string, start time.Time, points int) {
	if h.sink == nil {
		return
	}
	h.sink.ObserveSimulation(endpoint, status, time.Since(start).Seconds(), points)
}
