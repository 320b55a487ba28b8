package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the /metrics endpoint. Registered once at
// package init on the default registry, which promhttp.Handler serves.
var (
	metricHarmonizeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reedsmap",
		Name:      "harmonize_runs_total",
		Help:      "Completed harmonization jobs by dataset and outcome.",
	}, []string{"dataset", "outcome"})

	metricHarmonizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reedsmap",
		Name:      "harmonize_duration_seconds",
		Help:      "Wall-clock duration of harmonization jobs.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	metricHarmonizeRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reedsmap",
		Name:      "harmonize_rows_total",
		Help:      "Data rows written across all harmonization jobs.",
	})

	metricValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reedsmap",
		Name:      "mapping_validations_total",
		Help:      "Mapping document validations by result.",
	}, []string{"result"})

	metricMappingReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reedsmap",
		Name:      "mapping_reloads_total",
		Help:      "Hot reloads of the mapping file by result.",
	}, []string{"result"})
)
