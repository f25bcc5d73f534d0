// AngelaMos | 2026
// handler.go

package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/scoreshop/internal/bundle"
	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/middleware"
	"github.com/angelamos/scoreshop/internal/user"
)

type CreateSessionRequest struct {
	BundleID string `json:"bundle_id" validate:"required"`
}

type CreateSessionResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type Handler struct {
	service   *Service
	bundles   *bundle.Service
	users     user.Repository
	validator *validator.Validate
}

func NewHandler(
	service *Service,
	bundles *bundle.Service,
	users user.Repository,
) *Handler {
	return &Handler{
		service:   service,
		bundles:   bundles,
		users:     users,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).
		Post("/purchase/create-checkout-session", h.CreateCheckoutSession)
}

func (h *Handler) CreateCheckoutSession(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID := middleware.GetUserID(r.Context())
	email := middleware.GetUserEmail(r.Context())

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	b, err := h.bundles.Get(r.Context(), req.BundleID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "bundle")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if _, err := h.users.Upsert(r.Context(), userID, email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	checkoutURL, err := h.service.CreateSession(r.Context(), b, userID, email)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CreateSessionResponse{CheckoutURL: checkoutURL})
}
