package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the uplift report HTTP handlers, by route
	HTTPRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uplift_http_request_latency_seconds",
		Help:    "Latency of uplift report API handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// Total number of uplift API requests, by route and status code
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "uplift_http_requests_total",
		Help: "Total number of uplift API requests",
	}, []string{"route", "code"})
)

func Init() {
	prometheus.MustRegister(
		HTTPRequestLatency,
		HTTPRequests,
	)
}
