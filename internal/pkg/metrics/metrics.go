// Package metrics defines and registers all custom Prometheus metrics for the
// leads service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package init, so
// importing the package is enough; /metrics serves them alongside the HTTP
// metrics recorded by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leads"

// ── Lead metrics ──────────────────────────────────────────────────────────────

// LeadsCreatedTotal counts leads persisted by the submit operation.
// Label:
//   - source: the lead's source field, or "unknown" when absent
var LeadsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of leads persisted, by source.",
	},
	[]string{"source"},
)

// LeadSubmissionErrorsTotal counts submissions that did not produce a lead.
// Label:
//   - reason: "validation" or "storage"
var LeadSubmissionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_errors_total",
		Help:      "Total number of rejected or failed lead submissions.",
	},
	[]string{"reason"},
)

// IdempotencyTotal counts Idempotency-Key reservations.
// Label:
//   - result: "hit" (replayed), "miss" (new lead), "in_progress" (rejected
//     while another request holds the key) or "error" (cache unavailable)
var IdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_total",
		Help:      "Total number of idempotency key reservations, labelled by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts lead.created notification outcomes.
// Labels:
//   - notifier: "amqp" or "email"
//   - result: "sent", "failed" or "dropped" (queue full, notifier is "queue")
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of lead notifications, by notifier and result.",
	},
	[]string{"notifier", "result"},
)

// NotificationQueueDepth tracks the events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of events pending in each notification worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDuration measures one notifier call.
// Label:
//   - notifier: "amqp" or "email"
var NotificationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a single notifier delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"notifier"},
)

// ── Auth and status metrics ───────────────────────────────────────────────────

// LoginAttemptsTotal counts admin login attempts.
// Label:
//   - result: "success", "rejected" or "unavailable"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of admin login attempts, by result.",
	},
	[]string{"result"},
)

// StatusChecksTotal counts recorded status checks.
// Label:
//   - origin: "api" or "heartbeat"
var StatusChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_checks_total",
		Help:      "Total number of status checks recorded, by origin.",
	},
	[]string{"origin"},
)
