package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TodoOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todofy", Name: "todo_operations_total", Help: "Number of todo repository operations by operation and outcome."},
		[]string{"op", "outcome"},
	)
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todofy", Name: "auth_attempts_total", Help: "Number of authentication attempts by action and outcome."},
		[]string{"action", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todofy", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todofy", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

// Outcome labels used with TodoOperations and AuthAttempts.
const (
	OutcomeOK      = "ok"
	OutcomeMissing = "missing"
	OutcomeError   = "error"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(TodoOperations)
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
