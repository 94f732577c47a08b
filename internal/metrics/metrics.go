package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mezunlar"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// Decisions counts approval decisions. result is "changed", "noop" or "conflict".
	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approval_decisions_total",
		Help:      "Approve/reject decisions by target status and result.",
	}, []string{"status", "result"})

	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Accepted self-service registrations.",
	})

	RoleChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Admin role assignments and removals.",
	}, []string{"role"})

	MailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mails_sent_total",
		Help:      "Notification mails by template and outcome.",
	}, []string{"template", "outcome"})
)
