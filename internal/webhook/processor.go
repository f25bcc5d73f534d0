// AngelaMos | 2026
// processor.go

// Package webhook turns payment-provider confirmation events into durable
// entitlements. Delivery is at-least-once; everything here is replay-safe.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/angelamos/scoreshop/internal/entitlement"
	"github.com/angelamos/scoreshop/internal/metrics"
)

var (
	// ErrBadSignature: the event could not be authenticated. Client error,
	// no retry.
	ErrBadSignature = errors.New("webhook signature verification failed")

	// ErrMissingMetadata: a verified completed-checkout event without the
	// user/bundle join keys. Permanent; the event will never gain the
	// metadata it lacks.
	ErrMissingMetadata = errors.New("checkout session metadata incomplete")

	// ErrProcessingFailed: a storage failure while applying the event. The
	// provider must retry delivery.
	ErrProcessingFailed = errors.New("failed to process payment event")
)

// PurchaseRecorder persists a confirmed purchase: buyer upsert plus
// idempotent entitlement grant, atomically.
type PurchaseRecorder interface {
	Record(
		ctx context.Context,
		userID, bundleID, email string,
	) (*entitlement.Entitlement, error)
}

type Processor struct {
	signingSecret string
	purchases     PurchaseRecorder
}

func NewProcessor(
	signingSecret string,
	purchases PurchaseRecorder,
) *Processor {
	return &Processor{
		signingSecret: signingSecret,
		purchases:     purchases,
	}
}

// HandleEvent verifies, filters, extracts, and applies a single delivery.
// The signature covers the raw bytes as received; rawBody must not have
// passed through any parsing or transcoding middleware.
func (p *Processor) HandleEvent(
	ctx context.Context,
	rawBody []byte,
	signatureHeader string,
) error {
	if signatureHeader == "" {
		metrics.WebhookEventsTotal.
			WithLabelValues("unknown", "bad_signature").Inc()
		return fmt.Errorf("missing signature header: %w", ErrBadSignature)
	}

	event, err := stripewebhook.ConstructEvent(
		rawBody,
		signatureHeader,
		p.signingSecret,
	)
	if err != nil {
		metrics.WebhookEventsTotal.
			WithLabelValues("unknown", "bad_signature").Inc()
		return fmt.Errorf("construct event: %w", ErrBadSignature)
	}

	// Only completed checkouts drive side effects. Unknown or irrelevant
	// event kinds are acknowledged untouched so the provider does not
	// redeliver them.
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		metrics.WebhookEventsTotal.
			WithLabelValues(string(event.Type), "ignored").Inc()
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		metrics.WebhookEventsTotal.
			WithLabelValues(string(event.Type), "missing_metadata").Inc()
		return fmt.Errorf("decode checkout session: %w", ErrMissingMetadata)
	}

	userID := session.Metadata["user_id"]
	bundleID := session.Metadata["bundle_id"]
	if userID == "" || bundleID == "" {
		metrics.WebhookEventsTotal.
			WithLabelValues(string(event.Type), "missing_metadata").Inc()
		slog.Error("webhook event missing metadata",
			"event_id", event.ID,
			"has_user_id", userID != "",
			"has_bundle_id", bundleID != "",
		)
		return ErrMissingMetadata
	}

	if _, err := p.purchases.Record(
		ctx, userID, bundleID, session.CustomerEmail,
	); err != nil {
		metrics.WebhookEventsTotal.
			WithLabelValues(string(event.Type), "failed").Inc()
		slog.Error("webhook purchase record failed",
			"event_id", event.ID,
			"user_id", userID,
			"bundle_id", bundleID,
			"error", err,
		)
		return fmt.Errorf("record purchase: %w", ErrProcessingFailed)
	}

	metrics.WebhookEventsTotal.
		WithLabelValues(string(event.Type), "processed").Inc()
	slog.Info("entitlement granted",
		"event_id", event.ID,
		"user_id", userID,
		"bundle_id", bundleID,
	)

	return nil
}
