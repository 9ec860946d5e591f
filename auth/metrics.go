package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fpl",
		Subsystem: "auth",
		Name:      "logins_started_total",
		Help:      "Login requests created.",
	})

	loginsActivated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fpl",
		Subsystem: "auth",
		Name:      "logins_activated_total",
		Help:      "Login requests that reached the active state.",
	})

	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fpl",
		Subsystem: "auth",
		Name:      "session_transitions_total",
		Help:      "Session state transitions by destination state.",
	}, []string{"to"})
)
