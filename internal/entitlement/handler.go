// AngelaMos | 2026
// handler.go

package entitlement

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/middleware"
)

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
	r.With(authenticator).Get("/entitlements", h.ListEntitlements)
}

// ListEntitlements serves the caller's library, newest purchase first.
func (h *Handler) ListEntitlements(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	entitlements, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if entitlements == nil {
		entitlements = []WithBundle{}
	}

	core.OK(w, entitlements)
}
