package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weathercentral_evaluations_total",
			Help: "Total advisory evaluations by resulting state",
		},
		[]string{"state"},
	)

	EvaluationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weathercentral_evaluation_errors_total",
			Help: "Evaluations skipped because the mandatory humidity input was missing",
		},
	)

	SensorReadErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weathercentral_sensor_read_errors_total",
			Help: "Sensor reads that produced no usable sample",
		},
	)

	ForecastFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weathercentral_forecast_fetches_total",
			Help: "Forecast refresh attempts by outcome",
		},
		[]string{"status"},
	)

	ForecastFetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weathercentral_forecast_fetch_latency_seconds",
			Help:    "Forecast fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PublishErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weathercentral_publish_errors_total",
			Help: "Telemetry topic publishes that failed",
		},
	)
)
