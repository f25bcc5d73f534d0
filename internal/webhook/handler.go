// AngelaMos | 2026
// handler.go

package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/metrics"
)

// Stripe caps event payloads well below this; anything larger is noise.
const maxBodyBytes = 65536

const signatureHeader = "Stripe-Signature"

type Handler struct {
	processor *Processor
}

func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

// RegisterRoutes mounts the webhook. The route must see the raw request
// body; no body-parsing middleware may run ahead of it.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/stripe/webhook", h.HandleWebhook)
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.WebhookProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		core.BadRequest(w, "unable to read request body")
		return
	}

	err = h.processor.HandleEvent(
		r.Context(),
		rawBody,
		r.Header.Get(signatureHeader),
	)
	switch {
	case err == nil:
	case errors.Is(err, ErrBadSignature):
		core.BadRequest(w, "invalid webhook signature")
		return
	case errors.Is(err, ErrMissingMetadata):
		core.BadRequest(w, "missing metadata in checkout session")
		return
	default:
		// Server error: the provider treats this as a failed delivery and
		// retries.
		core.JSONError(w, core.ServerError("failed to process purchase"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}
