// Package metrics defines and registers all custom Prometheus metrics for
// the association API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics use promauto, so importing the package registers them with the
// default Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "association"

// ── Enrollment metrics ────────────────────────────────────────────────────────

// EnrollmentsCreatedTotal counts successful enrollments.
// Label:
//   - audience: "member" or "non_member"
var EnrollmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_created_total",
		Help:      "Total number of enrollments created, by audience class.",
	},
	[]string{"audience"},
)

// EnrollmentsRejectedTotal counts enrollment attempts refused by a guard.
// Label:
//   - reason: "duplicate", "capacity", "deadline", or "inactive"
var EnrollmentsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_rejected_total",
		Help:      "Total number of enrollment attempts rejected, by reason.",
	},
	[]string{"reason"},
)

// ── Application metrics ───────────────────────────────────────────────────────

// ApplicationsDecidedTotal counts application workflow decisions.
// Label:
//   - decision: "approved", "rejected", or "paid"
var ApplicationsDecidedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_decided_total",
		Help:      "Total number of membership application decisions, by outcome.",
	},
	[]string{"decision"},
)

// ApplicationsSubmittedTotal counts incoming membership applications.
var ApplicationsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Total number of membership applications submitted.",
	},
)

// ── News metrics ──────────────────────────────────────────────────────────────

// NewsReordersTotal counts reorder batches applied to the news listing.
var NewsReordersTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "news_reorders_total",
		Help:      "Total number of news reorder batches applied.",
	},
)
