// Package monitoring collects serving metrics and streams prediction events.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide metrics registry. One instance is constructed
// at startup and handed to every component that reports into it; counters
// tolerate concurrent increments, nothing survives a restart.
type Metrics struct {
	registry *prometheus.Registry

	predictions prometheus.Counter
	latency     prometheus.Histogram
	accuracy    prometheus.Gauge
	requests    *prometheus.CounterVec
}

// NewMetrics builds a dedicated registry with the serving metric families.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of predictions made",
		}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_prediction_duration_seconds",
			Help:    "Time spent on predictions",
			Buckets: prometheus.DefBuckets,
		}),
		accuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_accuracy",
			Help: "Holdout accuracy of the currently loaded model",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		}, []string{"method", "endpoint", "status"}),
	}
}

// ObservePrediction records one successful inference and its latency.
func (m *Metrics) ObservePrediction(latency time.Duration) {
	m.predictions.Inc()
	m.latency.Observe(latency.Seconds())
}

// RecordRequest counts one API request by method, endpoint and status code.
func (m *Metrics) RecordRequest(method, endpoint string, status int) {
	m.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// SetAccuracy publishes the loaded model's holdout accuracy.
func (m *Metrics) SetAccuracy(accuracy float64) {
	m.accuracy.Set(accuracy)
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
