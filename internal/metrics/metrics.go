package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "todo_api"

// Auth holds the counters recorded by the authentication flows. A nil *Auth
// records nothing.
type Auth struct {
	logins          *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	resets          *prometheus.CounterVec
	signups         prometheus.Counter
}

func NewAuth(reg prometheus.Registerer) *Auth {
	m := &Auth{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_rejections_total",
			Help:      "Bearer tokens rejected by the auth gate, by reason.",
		}, []string{"reason"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "password_resets_total",
			Help:      "Password reset lifecycle events.",
		}, []string{"event"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "signups_total",
			Help:      "Accounts created.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.logins, m.tokenRejections, m.resets, m.signups)
	}
	return m
}

func (m *Auth) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Auth) TokenRejected(reason string) {
	if m == nil {
		return
	}
	m.tokenRejections.WithLabelValues(reason).Inc()
}

func (m *Auth) Reset(event string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(event).Inc()
}

func (m *Auth) Signup() {
	if m == nil {
		return
	}
	m.signups.Inc()
}

// HTTP records request counts and latencies per route.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

func (m *HTTP) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
