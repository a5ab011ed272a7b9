// Package api wires the HTTP surface of the simulation service.
package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"storage-cycles/internal/api/handlers"
	"storage-cycles/internal/api/middleware"
	"storage-cycles/internal/config"
	"storage-cycles/internal/logger"
	"storage-cycles/internal/metrics"
)

// NewHandler builds the full HTTP handler: gin routes wrapped in CORS.
func NewHandler(cfg *config.Config, sink *metrics.Sink) http.Handler {
	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	log := logger.New("api")
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	simHandler := handlers.NewSimulationHandler(logger.New("simulation"), sink)
	econHandler := handlers.NewEconomicsHandler(logger.New("economics"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if sink != nil && cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(sink.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/storage/cycles", simHandler.ComputeCycles)
		v1.POST("/storage/curves", simHandler.ComputeCurves)
		v1.POST("/storage/capacity", simHandler.CompareCapacities)
		v1.POST("/storage/economics", econHandler.ComputeEconomics)
	}

	return cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)
}
