// Prometheus counters for the HTTP boundary and the push relay.
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pledge_api_requests_total",
		Help: "API requests by operation and outcome.",
	}, []string{"op", "outcome"})

	pushesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pledge_push_events_total",
		Help: "Push events published to the display stream, by type.",
	}, []string{"type"})

	pushesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pledge_push_events_dropped_total",
		Help: "Push events dropped because a subscriber could not keep up.",
	})
)
