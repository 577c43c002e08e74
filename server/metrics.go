package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-martini/martini"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsahelper_dashboard_requests_total",
		Help: "Dashboard requests by route and status.",
	}, []string{"method", "route", "status"})

	pageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dsahelper_dashboard_request_duration_seconds",
		Help:    "Time spent serving dashboard requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// counter records every routed request once the rest of the chain has run.
func counter(w http.ResponseWriter, r *http.Request, route martini.Route, c martini.Context) {
	start := time.Now()
	c.Next()
	seconds := time.Since(start).Seconds()

	status := http.StatusOK
	if rw, ok := w.(martini.ResponseWriter); ok && rw.Status() != 0 {
		status = rw.Status()
	}
	pageHits.WithLabelValues(r.Method, route.Pattern(), strconv.Itoa(status)).Inc()
	pageSeconds.WithLabelValues(r.Method, route.Pattern()).Observe(seconds)
}
