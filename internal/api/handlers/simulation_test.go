package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-cycles/internal/api/models"
	"storage-cycles/internal/model"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sim := NewSimulationHandler(zerolog.Nop(), nil)
	econ := NewEconomicsHandler(zerolog.Nop())
	r.POST("/api/v1/storage/cycles", sim.ComputeCycles)
	r.POST("/api/v1/storage/curves", sim.ComputeCurves)
	r.POST("/api/v1/storage/capacity", sim.CompareCapacities)
	r.POST("/api/v1/storage/economics", econ.ComputeEconomics)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func simRequest() models.SimulateRequest {
	var day model.DailySchedule
	for _, h := range []int{0, 1, 2, 3} {
		day[h] = model.ScheduleCell{Tier: model.TierDeep, Mode: model.ModeCharge}
	}
	for _, h := range []int{12, 13, 14, 15} {
		day[h] = model.ScheduleCell{Tier: model.TierPeak, Mode: model.ModeDischarge}
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]model.LoadSample, 0, 24)
	for h := 0; h < 24; h++ {
		samples = append(samples, model.LoadSample{
			Timestamp: start.Add(time.Duration(h) * time.Hour),
			LoadKW:    100,
		})
	}

	return models.SimulateRequest{
		Samples: samples,
		Storage: model.StorageParams{
			CapacityKWh:      400,
			CRate:            0.5,
			Efficiency:       0.9,
			DepthOfDischarge: 0.9,
			SOCMin:           0.05,
			SOCMax:           0.95,
			Metering:         model.MeteringTransformerCapacity,
			TransformerKVA:   400,
			PowerFactor:      1.0,
		},
		Schedule: models.ScheduleSpec{Months: map[int]model.DailySchedule{3: day}},
	}
}

func TestComputeCyclesOK(t *testing.T) {
	w := postJSON(t, setupRouter(), "/api/v1/storage/cycles", simRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CyclesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.RunID)
	assert.NoError(t, err)
	require.Len(t, resp.Days, 1)
	assert.InDelta(t, 0.729, resp.Days[0].Cycles, 1e-9)
	assert.Greater(t, resp.Year.AnnualizedCycles, 0.0)
	assert.Contains(t, resp.Diagnostics.MonthlyDemandMaxKW, "2024-03")
}

func TestComputeCyclesValidationError(t *testing.T) {
	req := simRequest()
	req.Storage.CapacityKWh = 0
	w := postJSON(t, setupRouter(), "/api/v1/storage/cycles", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "capacity_kwh")
}

func TestComputeCyclesNoWindows(t *testing.T) {
	req := simRequest()
	req.Schedule.Months = map[int]model.DailySchedule{}
	w := postJSON(t, setupRouter(), "/api/v1/storage/cycles", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error.Message, "windows")
}

func TestComputeCurvesOK(t *testing.T) {
	req := models.CurvesRequest{SimulateRequest: simRequest(), Date: "2024-03-01"}
	w := postJSON(t, setupRouter(), "/api/v1/storage/curves", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CurvesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2024-03-01", resp.Date)
	assert.Len(t, resp.LoadKW, 24)
	assert.Len(t, resp.LoadWithStorageKW, 24)
	assert.GreaterOrEqual(t, resp.PeakLoadKW, resp.PeakWithStorageKW-1e-9)
}

func TestComputeCurvesUnknownDate(t *testing.T) {
	req := models.CurvesRequest{SimulateRequest: simRequest(), Date: "2024-07-01"}
	w := postJSON(t, setupRouter(), "/api/v1/storage/curves", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompareCapacitiesOK(t *testing.T) {
	req := models.CapacityRequest{
		SimulateRequest: simRequest(),
		Capacities:      []float64{100, 200, 400},
		TargetCycles:    250,
	}
	w := postJSON(t, setupRouter(), "/api/v1/storage/capacity", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CapacityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Contains(t, []float64{100, 200, 400}, resp.Best.CapacityKWh)
}

func TestComputeEconomicsOK(t *testing.T) {
	req := models.EconomicsRequest{
		FirstYearRevenue: 120000,
		HorizonYears:     10,
		CapacityKWh:      400,
		CapexPerWh:       1.2,
		OMCostPerKWhYear: 50,
		FirstYearDecay:   0.02,
		SubsequentDecay:  0.015,
	}
	w := postJSON(t, setupRouter(), "/api/v1/storage/economics", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.EconomicsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 480000, resp.CapexTotal, 1e-6)
	require.Len(t, resp.Cashflows, 10)
	assert.NotNil(t, resp.IRR)
}

func TestComputeEconomicsValidationError(t *testing.T) {
	req := models.EconomicsRequest{HorizonYears: 99, CapacityKWh: 400, CapexPerWh: 1}
	w := postJSON(t, setupRouter(), "/api/v1/storage/economics", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}
