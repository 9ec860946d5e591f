package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fpl",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Fresh cache hits served without an upstream call.",
	}, []string{"key"})

	missesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fpl",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Lookups that found no fresh entry.",
	}, []string{"key"})

	staleServesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fpl",
		Subsystem: "cache",
		Name:      "stale_serves_total",
		Help:      "Expired entries served because the refresh failed.",
	}, []string{"key"})

	fetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fpl",
		Subsystem: "cache",
		Name:      "fetch_failures_total",
		Help:      "Upstream fetches that returned an error.",
	}, []string{"key"})
)
