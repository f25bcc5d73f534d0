// AngelaMos | 2026
// metrics.go

// Package metrics defines the custom Prometheus metrics for the scoreshop
// API. It is the single source of truth for metric names, labels, and help
// strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scoreshop"

// WebhookEventsTotal counts inbound payment-provider webhook deliveries.
// Labels:
//   - type: the provider event type (e.g. "checkout.session.completed")
//   - outcome: "processed", "ignored", "bad_signature", "missing_metadata",
//     or "failed"
var WebhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of payment webhook deliveries, by type and outcome.",
	},
	[]string{"type", "outcome"},
)

// EntitlementsGrantedTotal counts entitlement grants.
// Label:
//   - result: "created" for a new row, "replayed" when the row already existed
var EntitlementsGrantedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entitlements_granted_total",
		Help:      "Total number of entitlement grants, by result (created/replayed).",
	},
	[]string{"result"},
)

// CheckoutSessionsTotal counts checkout session creation attempts.
// Label:
//   - outcome: "created" or "failed"
var CheckoutSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Total number of hosted checkout sessions requested, by outcome.",
	},
	[]string{"outcome"},
)

// DownloadURLsIssuedTotal counts presigned download URLs handed out.
var DownloadURLsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "download_urls_issued_total",
		Help:      "Total number of presigned download URLs issued.",
	},
)

// AuthFailuresTotal counts bearer-token verifications that failed.
// Label:
//   - reason: "expired", "invalid", or "jwks_unavailable"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of failed bearer-token verifications, by reason.",
	},
	[]string{"reason"},
)

// WebhookProcessingDuration measures end-to-end webhook handling time.
var WebhookProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "webhook_processing_duration_seconds",
		Help:      "Duration of webhook processing from receipt to acknowledgement.",
		Buckets:   prometheus.DefBuckets,
	},
)
