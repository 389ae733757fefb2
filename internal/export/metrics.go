package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchml_exports_total",
			Help: "Total number of exports by document kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batchml_export_duration_seconds",
			Help:    "Duration of exports including the service round trip",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	exportDiagnostics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchml_export_diagnostics_total",
			Help: "Diagnostics reported by exports, by severity and code",
		},
		[]string{"severity", "code"},
	)
)
