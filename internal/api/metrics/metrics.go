// Package metrics defines and registers the custom Prometheus metrics of the
// auth API. It is the single source of truth for metric names, labels and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwtdemo/auth-system/internal/core/ports"
)

const namespace = "auth"

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "duplicate", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts session guard outcomes.
// Label:
//   - result: "authenticated", "missing_token" or "invalid_token"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of protected requests, by session guard decision.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures bcrypt work per call.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing and verification.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

type instrumentedHasher struct {
	next ports.PasswordHasher
}

// InstrumentHasher wraps h so every call is observed in PasswordHashDuration.
func InstrumentHasher(h ports.PasswordHasher) ports.PasswordHasher {
	return &instrumentedHasher{next: h}
}

func (h *instrumentedHasher) Hash(plaintext string) (string, error) {
	start := time.Now()
	defer func() { PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds()) }()
	return h.next.Hash(plaintext)
}

func (h *instrumentedHasher) Verify(plaintext, digest string) bool {
	start := time.Now()
	defer func() { PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds()) }()
	return h.next.Verify(plaintext, digest)
}
