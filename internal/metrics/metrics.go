package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitecontent"

var (
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "mutations_total", Help: "Number of content mutations by collection, operation and result."},
		[]string{"collection", "operation", "result"},
	)
	AssetUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "asset_uploads_total", Help: "Number of image uploads by result."},
		[]string{"result"},
	)
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of admin requests rejected by the rate limiter."},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by method, route and status.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Mutations)
	reg.MustRegister(AssetUploads)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RequestDuration)
}

// Result labels an outcome for the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
