package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// AttemptsTotal counts individual upstream API attempts.
	AttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_attempts_total",
		Help: "Total number of upstream downloader API attempts",
	}, []string{"platform", "api", "status"})

	// FailuresTotal counts fetches that exhausted every upstream.
	FailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_failures_total",
		Help: "Total number of fetches with no usable result",
	}, []string{"platform", "reason"})

	// RehostTotal counts re-hosting substitutions by outcome.
	RehostTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_rehost_total",
		Help: "Total number of media re-hosting attempts",
	}, []string{"status"})
)
