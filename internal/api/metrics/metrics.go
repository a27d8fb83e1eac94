// Package metrics defines and registers all custom Prometheus metrics for the
// storefront agent. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheLookupsTotal counts query cache reads.
// Labels:
//   - family: the key family (e.g. "books", "cart")
//   - result: "hit" (fresh entry served), "stale" (entry present but refetched) or "miss"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of query cache lookups, labelled by family and result.",
	},
	[]string{"family", "result"},
)

// CacheInvalidationsTotal counts entries dropped by explicit invalidation.
// Label:
//   - family: the invalidated key family
var CacheInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of cache entries removed by invalidation.",
	},
	[]string{"family"},
)

// CacheEntries tracks the number of entries currently held by the cache.
var CacheEntries = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_entries",
		Help:      "Current number of entries in the query cache.",
	},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the bookstore backend.
// Labels:
//   - method: HTTP method
//   - endpoint: route template (e.g. "/cart/{id}")
//   - status: response status code, or "network_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the bookstore backend.",
	},
	[]string{"method", "endpoint", "status"},
)

// BackendRequestDuration measures backend round-trip latency.
// Labels:
//   - method: HTTP method
//   - endpoint: route template
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the bookstore backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "endpoint"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Labels:
//   - state: the state entered ("anonymous", "authenticated")
//   - reason: what caused it (e.g. "resolve", "login", "register", "logout", "auth_expired")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"state", "reason"},
)

// CartCommandsTotal counts cart commands by outcome.
// Labels:
//   - command: "add", "update", "remove", "clear"
//   - result: "ok", "rejected" (local guard) or "error"
var CartCommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_commands_total",
		Help:      "Total number of cart commands, labelled by command and result.",
	},
	[]string{"command", "result"},
)
