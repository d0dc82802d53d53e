package driftline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driftline_client",
			Name:      "requests_total",
			Help:      "Outbound requests by method and outcome class.",
		},
		[]string{"method", "outcome"},
	)

	authorizationLostTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftline_client",
			Name:      "authorization_lost_total",
			Help:      "Responses that invalidated the stored credential.",
		},
	)

	fetchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "driftline_client",
			Name:      "fetch_retries_total",
			Help:      "Orchestrator-level retries of recoverable failures.",
		},
	)
)

// outcomeLabel buckets a status code for the requests counter.
func outcomeLabel(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}
