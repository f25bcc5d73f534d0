// AngelaMos | 2026
// processor_test.go

package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/angelamos/scoreshop/internal/entitlement"
)

const testSecret = "whsec_test_secret"

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type recordCall struct {
	userID   string
	bundleID string
	email    string
}

type stubRecorder struct {
	calls []recordCall
	err   error
}

func (s *stubRecorder) Record(
	_ context.Context,
	userID, bundleID, email string,
) (*entitlement.Entitlement, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, recordCall{
		userID:   userID,
		bundleID: bundleID,
		email:    email,
	})
	return &entitlement.Entitlement{
		ID:       fmt.Sprintf("ent-%d", len(s.calls)),
		UserID:   userID,
		BundleID: bundleID,
	}, nil
}

// signedEvent builds a provider event envelope around the given session
// object and signs it the way Stripe's delivery infrastructure would.
func signedEvent(
	t *testing.T,
	secret, eventType string,
	session map[string]any,
) ([]byte, string) {
	t.Helper()

	obj, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session object: %v", err)
	}

	payload := fmt.Appendf(nil,
		`{"id":"evt_test_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, obj,
	)

	signed := stripewebhook.GenerateTestSignedPayload(
		&stripewebhook.UnsignedPayload{
			Payload:   payload,
			Secret:    secret,
			Timestamp: time.Now(),
		})

	return signed.Payload, signed.Header
}

func completedSession(userID, bundleID, email string) map[string]any {
	s := map[string]any{
		"id":             "cs_test_1",
		"object":         "checkout.session",
		"customer_email": email,
		"metadata":       map[string]string{},
	}
	meta := map[string]string{}
	if userID != "" {
		meta["user_id"] = userID
	}
	if bundleID != "" {
		meta["bundle_id"] = bundleID
	}
	s["metadata"] = meta
	return s
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHandleEventRecordsPurchase(t *testing.T) {
	recorder := &stubRecorder{}
	p := NewProcessor(testSecret, recorder)

	body, sig := signedEvent(t, testSecret,
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", "buyer@example.com"),
	)

	if err := p.HandleEvent(context.Background(), body, sig); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(recorder.calls) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recorder.calls))
	}
	call := recorder.calls[0]
	if call.userID != "user-1" || call.bundleID != "bundle-1" {
		t.Errorf("unexpected record call: %+v", call)
	}
	if call.email != "buyer@example.com" {
		t.Errorf("email = %q, want buyer@example.com", call.email)
	}
}

func TestHandleEventReplayedDeliveryAcked(t *testing.T) {
	recorder := &stubRecorder{}
	p := NewProcessor(testSecret, recorder)

	body, sig := signedEvent(t, testSecret,
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", ""),
	)

	// The provider redelivers until it sees a 2xx. Both deliveries must
	// succeed; deduplication happens below the recorder.
	for i := range 2 {
		if err := p.HandleEvent(context.Background(), body, sig); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}

	if len(recorder.calls) != 2 {
		t.Fatalf("expected record per delivery, got %d", len(recorder.calls))
	}
}

func TestHandleEventMissingSignature(t *testing.T) {
	recorder := &stubRecorder{}
	p := NewProcessor(testSecret, recorder)

	body, _ := signedEvent(t, testSecret,
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", ""),
	)

	err := p.HandleEvent(context.Background(), body, "")
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if len(recorder.calls) != 0 {
		t.Error("unauthenticated event must not cause side effects")
	}
}

func TestHandleEventForgedSignature(t *testing.T) {
	recorder := &stubRecorder{}
	p := NewProcessor(testSecret, recorder)

	body, sig := signedEvent(t, "whsec_wrong_secret",
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", ""),
	)

	err := p.HandleEvent(context.Background(), body, sig)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if len(recorder.calls) != 0 {
		t.Error("forged event must not cause side effects")
	}
}

func TestHandleEventIgnoresUnrelatedEventTypes(t *testing.T) {
	recorder := &stubRecorder{}
	p := NewProcessor(testSecret, recorder)

	body, sig := signedEvent(t, testSecret,
		"payment_intent.succeeded",
		map[string]any{"id": "pi_test_1", "object": "payment_intent"},
	)

	// Unrelated events are acknowledged so the provider stops redelivering.
	if err := p.HandleEvent(context.Background(), body, sig); err != nil {
		t.Fatalf("expected unrelated event to be acked, got %v", err)
	}
	if len(recorder.calls) != 0 {
		t.Error("unrelated event must not cause side effects")
	}
}

func TestHandleEventMissingMetadata(t *testing.T) {
	cases := []struct {
		name     string
		userID   string
		bundleID string
	}{
		{"no user_id", "", "bundle-1"},
		{"no bundle_id", "user-1", ""},
		{"no metadata at all", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := &stubRecorder{}
			p := NewProcessor(testSecret, recorder)

			body, sig := signedEvent(t, testSecret,
				string(stripe.EventTypeCheckoutSessionCompleted),
				completedSession(tc.userID, tc.bundleID, ""),
			)

			err := p.HandleEvent(context.Background(), body, sig)
			if !errors.Is(err, ErrMissingMetadata) {
				t.Fatalf("expected ErrMissingMetadata, got %v", err)
			}
			if len(recorder.calls) != 0 {
				t.Error("incomplete event must not cause side effects")
			}
		})
	}
}

func TestHandleEventRecordFailure(t *testing.T) {
	recorder := &stubRecorder{err: errors.New("connection refused")}
	p := NewProcessor(testSecret, recorder)

	body, sig := signedEvent(t, testSecret,
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", ""),
	)

	err := p.HandleEvent(context.Background(), body, sig)
	if !errors.Is(err, ErrProcessingFailed) {
		t.Fatalf("expected ErrProcessingFailed, got %v", err)
	}
}
