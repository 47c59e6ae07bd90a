// Package metrics defines and registers all custom Prometheus metrics for
// the OSAS portal. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "osas"

// ViewsServedTotal counts views delivered through the loader endpoint.
// Label:
//   - view: the resolved logical view key (e.g. "admin/dashcontent")
var ViewsServedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "views_served_total",
		Help:      "Total number of views served by the view loader, by resolved key.",
	},
	[]string{"view"},
)

// ViewLoadErrorsTotal counts loader requests that failed.
// Label:
//   - reason: "empty_key" or "not_found"
var ViewLoadErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_load_errors_total",
		Help:      "Total number of view loader failures, by reason.",
	},
	[]string{"reason"},
)

// AuthRedirectsTotal counts redirects issued by the auth gate.
// Label:
//   - reason: "unauthenticated" or "role_mismatch"
var AuthRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_redirects_total",
		Help:      "Total number of redirects issued by the auth gate, by reason.",
	},
	[]string{"reason"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "failure", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RenderDuration measures how long a full page render takes, layout
// included.
// Label:
//   - view: the logical view key of the page content
var RenderDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Duration of page rendering from handler entry to response write.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"view"},
)
