package uplift

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uplift_reports_total",
			Help: "Count of uplift report generations by outcome.",
		},
		[]string{"status"},
	)

	ReportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "uplift_report_duration_seconds",
		Help:    "Wall time of a full split, score, rank, aggregate and emit pass.",
		Buckets: prometheus.DefBuckets,
	})

	ScoringFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uplift_scoring_fallback_total",
			Help: "Scoring calls that ran without the leak-prone columns, by mode.",
		},
		[]string{"mode"},
	)

	DecileLiftPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uplift_decile_lift_percent",
			Help: "Incremental conversion lift of the last report, by decile. NaN when undefined.",
		},
		[]string{"decile"},
	)

	TestRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uplift_test_records",
		Help: "Size of the reconstructed test partition in the last report.",
	})
)

func init() {
	prometheus.MustRegister(
		ReportsTotal,
		ReportDuration,
		ScoringFallbackTotal,
		DecileLiftPercent,
		TestRecords,
	)
}
