package conv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	convolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigconv_convolution_duration_seconds",
		Help:    "Wall time of one convolution by method",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
	}, []string{"method"})

	continuousPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigconv_continuous_points_total",
		Help: "Output points computed by the continuous engine, by outcome",
	}, []string{"outcome"})

	quadratureEvaluations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigconv_quadrature_evaluations",
		Help:    "Integrand evaluations per output point",
		Buckets: []float64{15, 45, 105, 225, 465, 945, 1500},
	})

	integrationWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigconv_integration_warnings_total",
		Help: "Output points that missed the quadrature tolerance, by reason",
	}, []string{"reason"})
)

// Outcome labels for continuousPoints.
const (
	outcomeConverged = "converged"
	outcomeWarning   = "warning"
	outcomeEmpty     = "empty_support"
)
