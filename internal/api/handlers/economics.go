package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storage-cycles/internal/api/models"
	"storage-cycles/internal/economics"
)

// EconomicsHandler serves the project economics endpoint.
type EconomicsHandler struct {
	log zerolog.Logger
}

func NewEconomicsHandler(log zerolog.Logger) *EconomicsHandler {
	return &EconomicsHandler{log: log}
}

// ComputeEconomics handles POST /api/v1/storage/economics.
func (h *EconomicsHandler) ComputeEconomics(c *gin.Context) {
	var req models.EconomicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	res, err := economics.Compute(req)
	if err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	runID := uuid.NewString()
	ev := h.log.Info().Str("run_id", runID).Float64("capex", res.CapexTotal)
	if res.IRR != nil {
		ev = ev.Float64("irr", *res.IRR)
	}
	ev.Msg("economics computed")

	c.JSON(http.StatusOK, models.EconomicsResponse{
		RunID:  runID,
		Result: *res,
	})
}
