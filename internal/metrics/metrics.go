// Package metrics exposes prometheus instrumentation for the simulation
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink records simulation activity.
type Sink struct {
	registry *prometheus.Registry

	simulations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	points      prometheus.Counter
}

// NewSink builds a Sink on a fresh registry. Registration tolerates
// AlreadyRegisteredError so repeated construction in tests reuses the
// existing collectors.
func NewSink() (*Sink, error) {
	reg := prometheus.NewRegistry()
	s := &Sink{registry: reg}

	s.simulations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_simulations_total",
		Help: "Simulation runs by endpoint and status.",
	}, []string{"endpoint", "status"})
	if err := register(reg, &s.simulations); err != nil {
		return nil, err
	}

	s.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_simulation_duration_seconds",
		Help:    "Simulation wall time by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	if err := registerHist(reg, &s.duration); err != nil {
		return nil, err
	}

	points := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storage_points_processed_total",
		Help: "Load samples processed by the engine.",
	})
	if err := reg.Register(points); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			points = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	s.points = points

	return s, nil
}

func register(reg *prometheus.Registry, cv **prometheus.CounterVec) error {
	if err := reg.Register(*cv); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*cv = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	return nil
}

func registerHist(reg *prometheus.Registry, hv **prometheus.HistogramVec) error {
	if err := reg.Register(*hv); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*hv = are.ExistingCollector.(*prometheus.HistogramVec)
			return nil
		}
		return err
	}
	return nil
}

// ObserveSimulation records one run.
func (s *Sink) ObserveSimulation(endpoint, status string, seconds float64, points int) {
	s.simulations.WithLabelValues(endpoint, status).Inc()
	s.duration.WithLabelValues(endpoint).Observe(seconds)
	s.points.Add(float64(points))
}

// Handler serves the registry for the /metrics endpoint.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
