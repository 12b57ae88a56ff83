// Package metrics defines the custom Prometheus metrics of the task tracker
// API. It is the single source of truth for metric names, labels, and help
// strings. All metrics register with the default registry on import; HTTP
// request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tasktracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - channel: "api" (token in body) or "browser" (cookie + redirect)
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by channel and result.",
	},
	[]string{"channel", "result"},
)

// AuthRejectionsTotal counts requests rejected by the authorization gate.
// Label:
//   - reason: "not_authenticated", "revoked", "invalid", "unknown_subject", "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authentication or role checks.",
	},
	[]string{"reason"},
)

// TokensRevokedTotal counts successful logouts.
var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of tokens revoked through logout.",
	},
)

// RevocationsPrunedTotal counts revoked-token entries removed after expiry.
var RevocationsPrunedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revocations_pruned_total",
		Help:      "Total number of expired revocation entries pruned.",
	},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts tasks assigned by managers.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// TaskTransitionsTotal counts progress updates.
// Label:
//   - status: the status applied by the update (e.g. "in_progress")
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_total",
		Help:      "Total number of task progress updates, by resulting status.",
	},
	[]string{"status"},
)

// TaskHoursTotal sums the hours booked through progress updates.
var TaskHoursTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_hours_total",
		Help:      "Total number of hours booked on tasks.",
	},
)

// TaskReassignmentsTotal counts reassignments.
var TaskReassignmentsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_reassignments_total",
		Help:      "Total number of task reassignments.",
	},
)

// TaskConflictsTotal counts updates lost to a concurrent writer.
var TaskConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_conflicts_total",
		Help:      "Total number of task updates rejected because of a concurrent modification.",
	},
)
