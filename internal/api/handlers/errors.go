package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storage-cycles/internal/api/models"
)

var errNoCapacities = errors.New("capacities are required")

func errNoSamplesOn(date string) error {
	return fmt.Errorf("no samples on %s", date)
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}

func internalError(c *gin.Context, code string, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}
