package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dsahelper",
		Name:      "gateway_requests_total",
		Help:      "Total number of backend API requests sent",
	}, []string{"method", "path", "status"})

	gatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dsahelper",
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of backend API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// status 0 records a request that never got an answer
func observe(method, path string, status int, start time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	gatewayRequests.WithLabelValues(method, path, label).Inc()
	gatewayLatency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}
