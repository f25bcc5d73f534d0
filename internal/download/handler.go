// AngelaMos | 2026
// handler.go

package download

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/middleware"
)

type DownloadResponse struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
	ExpiresIn   int    `json:"expires_in"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).
		Get("/bundles/{bundleID}/download", h.DownloadBundle)
}

func (h *Handler) DownloadBundle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	bundleID := chi.URLParam(r, "bundleID")
	fileKey := r.URL.Query().Get("file")

	grant, err := h.service.Authorize(r.Context(), userID, bundleID, fileKey)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "you do not own this bundle")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "file")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, DownloadResponse{
		DownloadURL: grant.URL,
		Filename:    grant.Filename,
		ExpiresIn:   grant.ExpiresIn,
	})
}
