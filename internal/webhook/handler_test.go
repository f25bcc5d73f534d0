// AngelaMos | 2026
// handler_test.go

package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stripe/stripe-go/v82"
)

func postWebhook(
	t *testing.T,
	h *Handler,
	body []byte,
	signature string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(
		http.MethodPost,
		"/stripe/webhook",
		bytes.NewReader(body),
	)
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}

	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func TestHandleWebhookAcksValidEvent(t *testing.T) {
	h := NewHandler(NewProcessor(testSecret, &stubRecorder{}))

	body, sig := signedEvent(t, testSecret,
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", ""),
	)

	rec := postWebhook(t, h, body, sig)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["received"] {
		t.Error(`response must report {"received": true}`)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	h := NewHandler(NewProcessor(testSecret, &stubRecorder{}))

	body, sig := signedEvent(t, "whsec_wrong_secret",
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", ""),
	)

	// 400 tells the provider the delivery is unprocessable; it will not
	// retry a signature failure forever.
	rec := postWebhook(t, h, body, sig)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleWebhookRejectsMissingMetadata(t *testing.T) {
	h := NewHandler(NewProcessor(testSecret, &stubRecorder{}))

	body, sig := signedEvent(t, testSecret,
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("", "", ""),
	)

	rec := postWebhook(t, h, body, sig)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleWebhookStorageFailureIs500(t *testing.T) {
	recorder := &stubRecorder{err: errors.New("connection refused")}
	h := NewHandler(NewProcessor(testSecret, recorder))

	body, sig := signedEvent(t, testSecret,
		string(stripe.EventTypeCheckoutSessionCompleted),
		completedSession("user-1", "bundle-1", ""),
	)

	// 500 makes the provider redeliver, which is exactly what a transient
	// storage failure needs.
	rec := postWebhook(t, h, body, sig)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
