package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics tracks login, activation and session lifecycle outcomes.
type AuthMetrics struct {
	logins       *prometheus.CounterVec
	activations  *prometheus.CounterVec
	otpIssued    prometheus.Counter
	sessions     *prometheus.CounterVec
	mailFailures prometheus.Counter
}

// NewAuthMetrics registers the auth flow metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_total",
		Help: "Login attempts partitioned by outcome.",
	}, []string{"outcome"})
	activations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_activation_total",
		Help: "OTP activation attempts partitioned by outcome.",
	}, []string{"outcome"})
	otpIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_otp_issued_total",
		Help: "One-time activation codes issued.",
	})
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_session_events_total",
		Help: "Session lifecycle events (created, rotated, revoked).",
	}, []string{"event"})
	mailFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_mail_failures_total",
		Help: "Transactional emails that failed to send.",
	})
	reg.MustRegister(logins, activations, otpIssued, sessions, mailFailures)
	return &AuthMetrics{
		logins:       logins,
		activations:  activations,
		otpIssued:    otpIssued,
		sessions:     sessions,
		mailFailures: mailFailures,
	}
}

// IncLogin records a login attempt with the given outcome label.
func (a *AuthMetrics) IncLogin(outcome string) {
	if a == nil || a.logins == nil {
		return
	}
	a.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncActivation records an OTP verification attempt with the given outcome.
func (a *AuthMetrics) IncActivation(outcome string) {
	if a == nil || a.activations == nil {
		return
	}
	a.activations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOTPIssued counts an issued activation code.
func (a *AuthMetrics) IncOTPIssued() {
	if a == nil || a.otpIssued == nil {
		return
	}
	a.otpIssued.Inc()
}

// IncSessionEvent records a session lifecycle event.
func (a *AuthMetrics) IncSessionEvent(event string) {
	if a == nil || a.sessions == nil {
		return
	}
	a.sessions.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncMailFailure counts a transactional email that could not be delivered.
func (a *AuthMetrics) IncMailFailure() {
	if a == nil || a.mailFailures == nil {
		return
	}
	a.mailFailures.Inc()
}
