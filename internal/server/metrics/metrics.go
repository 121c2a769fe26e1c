// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Results recorded for auth operations.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// Metrics groups the server's collectors.
type Metrics struct {
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	AuthOperations *prometheus.CounterVec
	ResetEmails    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microauth_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "microauth_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microauth_auth_operations_total",
				Help: "Total number of auth workflow operations by outcome",
			},
			[]string{"operation", "result"},
		),
		ResetEmails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microauth_reset_emails_total",
				Help: "Password reset emails by delivery status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.AuthOperations, m.ResetEmails)
	return m
}

// RecordRequest counts one HTTP request and its latency.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordOperation counts one auth operation outcome.
func (m *Metrics) RecordOperation(operation, result string) {
	m.AuthOperations.WithLabelValues(operation, result).Inc()
}

// RecordResetEmail counts one reset email attempt.
func (m *Metrics) RecordResetEmail(sent bool) {
	status := "sent"
	if !sent {
		status = "failed"
	}
	m.ResetEmails.WithLabelValues(status).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
