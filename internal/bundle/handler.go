// AngelaMos | 2026
// handler.go

package bundle

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/scoreshop/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/bundles", h.ListBundles)
	r.Get("/bundles/{bundleID}", h.GetBundle)
}

func (h *Handler) ListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if bundles == nil {
		bundles = []Bundle{}
	}

	core.OK(w, bundles)
}

type bundleWithMetadata struct {
	Bundle
	Metadata *Metadata `json:"metadata"`
}

func (h *Handler) GetBundle(w http.ResponseWriter, r *http.Request) {
	bundleID := chi.URLParam(r, "bundleID")

	b, err := h.service.Get(r.Context(), bundleID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "bundle")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	meta, err := h.service.Metadata(r.Context(), b)
	if err != nil {
		// Degrade to a null metadata field; the bundle itself is fine.
		slog.Warn("bundle metadata unavailable",
			"bundle_id", bundleID,
			"error", err,
		)
		meta = nil
	}

	core.OK(w, bundleWithMetadata{
		Bundle:   *b,
		Metadata: meta,
	})
}
