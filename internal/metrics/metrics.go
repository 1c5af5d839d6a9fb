// Package metrics exposes the prometheus collectors of the chat backend.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Completion outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeApology  = "apology"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
)

type Metrics struct {
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	completions        *prometheus.CounterVec
	completionDuration prometheus.Histogram
	authAttempts       *prometheus.CounterVec
	chatTurns          prometheus.Counter
	rateLimited        prometheus.Counter
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalchat_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vitalchat_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalchat_completions_total",
			Help: "Assistant completions by outcome",
		}, []string{"outcome"}),
		completionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitalchat_completion_duration_seconds",
			Help:    "Assistant completion latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),
		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalchat_auth_attempts_total",
			Help: "Authentication attempts by method and result",
		}, []string{"method", "result"}),
		chatTurns: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalchat_chat_turns_total",
			Help: "Conversation turns persisted",
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalchat_rate_limited_total",
			Help: "Requests rejected by the chat rate limiter",
		}),
	}
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveCompletion(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(outcome).Inc()
	m.completionDuration.Observe(d.Seconds())
}

func (m *Metrics) AuthAttempt(method string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.authAttempts.WithLabelValues(method, result).Inc()
}

func (m *Metrics) ChatTurn() {
	if m == nil {
		return
	}
	m.chatTurns.Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
