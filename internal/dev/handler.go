// AngelaMos | 2026
// handler.go

// Package dev hosts development-only endpoints. Everything here answers 404
// in production.
package dev

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/scoreshop/internal/bundle"
	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/entitlement"
	"github.com/angelamos/scoreshop/internal/user"
)

type SimulatePurchaseRequest struct {
	UserID    string `json:"user_id"    validate:"required"`
	UserEmail string `json:"user_email"`
	BundleID  string `json:"bundle_id"  validate:"required"`
}

type Handler struct {
	enabled      bool
	bundles      *bundle.Service
	users        user.Repository
	entitlements *entitlement.Service
	validator    *validator.Validate
}

func NewHandler(
	enabled bool,
	bundles *bundle.Service,
	users user.Repository,
	entitlements *entitlement.Service,
) *Handler {
	return &Handler{
		enabled:      enabled,
		bundles:      bundles,
		users:        users,
		entitlements: entitlements,
		validator:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/dev/simulate-purchase", h.SimulatePurchase)
}

// SimulatePurchase grants an entitlement directly, skipping the payment
// provider entirely. Useful for exercising the download path locally.
func (h *Handler) SimulatePurchase(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		core.NotFound(w, "resource")
		return
	}

	var req SimulatePurchaseRequest
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

	email := req.UserEmail
	if email == "" {
		email = "dev@test.com"
	}

	if _, err := h.users.Upsert(r.Context(), req.UserID, email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	ent, err := h.entitlements.Grant(r.Context(), req.UserID, req.BundleID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{
		"message":     "purchase simulated",
		"entitlement": ent,
		"bundle": map[string]string{
			"id":    b.ID,
			"title": b.Title,
		},
	})
}
