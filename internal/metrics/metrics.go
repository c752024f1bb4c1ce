// Package metrics provides Prometheus instrumentation for the client's
// request layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts completed requests, labeled by method, path, and
	// outcome ("2xx", "4xx", "5xx", "error").
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatcli_requests_total",
		Help: "Total number of HTTP requests issued by the client",
	}, []string{"method", "path", "outcome"})

	// RequestDuration records end-to-end request latency including retries.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatcli_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// RetriesTotal counts retry attempts beyond the first try.
	RetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatcli_request_retries_total",
		Help: "Total number of request retries",
	})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RetriesTotal,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
