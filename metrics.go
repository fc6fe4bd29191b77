package authkit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the engine's Prometheus instrumentation. A nil *Metrics
// (instrumentation disabled) records nothing; every method is nil-safe
// so flow code never branches on it.
type Metrics struct {
	logins      *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	mfaVerifies *prometheus.CounterVec
	revocations *prometheus.CounterVec
	logouts     prometheus.Counter
}

func newMetrics(cfg MetricsConfig, reg prometheus.Registerer) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome.",
			},
			[]string{"result"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "tokens_issued_total",
				Help:      "Tokens issued by kind.",
			},
			[]string{"kind"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "token_refreshes_total",
				Help:      "Access-token refreshes by outcome.",
			},
			[]string{"result"},
		),
		mfaVerifies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "mfa_verifications_total",
				Help:      "Second-factor verifications by outcome.",
			},
			[]string{"result"},
		),
		revocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "token_revocations_total",
				Help:      "Token revocations by scope.",
			},
			[]string{"scope"},
		),
		logouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "logouts_total",
				Help:      "Logout requests processed.",
			},
		),
	}

	reg.MustRegister(m.logins, m.tokens, m.refreshes, m.mfaVerifies, m.revocations, m.logouts)

	return m
}

func (m *Metrics) loginResult(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) tokenIssued(kind string) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues(kind).Inc()
}

func (m *Metrics) refreshResult(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) mfaResult(result string) {
	if m == nil {
		return
	}
	m.mfaVerifies.WithLabelValues(result).Inc()
}

func (m *Metrics) revoked(scope string) {
	if m == nil {
		return
	}
	m.revocations.WithLabelValues(scope).Inc()
}

func (m *Metrics) logout() {
	if m == nil {
		return
	}
	m.logouts.Inc()
}
