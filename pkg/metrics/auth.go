package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics counts login and gate outcomes plus lifecycle writes.
type AuthMetrics struct {
	logins      *prometheus.CounterVec
	gate        *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_total",
		Help: "Login attempts by role and outcome.",
	}, []string{"role", "outcome"})
	gate := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_gate_rejections_total",
		Help: "Requests rejected by the authorization gate, by reason.",
	}, []string{"reason"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "account_status_transitions_total",
		Help: "Applied account status transitions.",
	}, []string{"kind", "from", "to"})
	reg.MustRegister(logins, gate, transitions)
	return &AuthMetrics{logins: logins, gate: gate, transitions: transitions}
}

// IncLogin counts a login attempt. role is empty when the email matched no account.
func (m *AuthMetrics) IncLogin(role, outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(role), normalizeLabel(outcome)).Inc()
}

// IncGateRejection counts a request the gate refused.
func (m *AuthMetrics) IncGateRejection(reason string) {
	if m == nil || m.gate == nil {
		return
	}
	m.gate.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncTransition counts an applied status change.
func (m *AuthMetrics) IncTransition(kind, from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(kind), normalizeLabel(from), normalizeLabel(to)).Inc()
}
