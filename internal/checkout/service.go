// AngelaMos | 2026
// service.go

// Package checkout creates hosted payment-provider checkout sessions. The
// session metadata is the only channel tying the later confirmation event
// back to a (user, bundle) pair.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v82"

	"github.com/angelamos/scoreshop/internal/bundle"
	"github.com/angelamos/scoreshop/internal/metrics"
)

// ErrNoSessionURL signals the provider accepted the session but returned no
// hosted URL. That is a misconfiguration, not a retryable condition.
var ErrNoSessionURL = errors.New("payment provider returned no checkout URL")

// SessionCreator is the slice of the Stripe client this service needs.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Service struct {
	sessions SessionCreator
	siteURL  string
}

func NewService(sessions SessionCreator, siteBaseURL string) *Service {
	return &Service{
		sessions: sessions,
		siteURL:  strings.TrimSuffix(siteBaseURL, "/"),
	}
}

// CreateSession builds a single-line-item, single-use checkout session and
// returns its hosted URL.
func (s *Service) CreateSession(
	ctx context.Context,
	b *bundle.Bundle,
	userID, userEmail string,
) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(b.Title),
						Description: stripe.String(b.Description),
					},
					UnitAmount: stripe.Int64(minorUnits(b.Price)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf(
			"%s/library?purchase=success&bundle=%s", s.siteURL, b.ID,
		)),
		CancelURL: stripe.String(fmt.Sprintf(
			"%s/bundles/%s?purchase=cancelled", s.siteURL, b.ID,
		)),
	}
	params.Context = ctx

	if userEmail != "" {
		params.CustomerEmail = stripe.String(userEmail)
	}

	// This metadata is copied verbatim onto the confirmation event and is
	// the join key for entitlement creation.
	params.AddMetadata("user_id", userID)
	params.AddMetadata("bundle_id", b.ID)

	session, err := s.sessions.New(params)
	if err != nil {
		metrics.CheckoutSessionsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	if session.URL == "" {
		metrics.CheckoutSessionsTotal.WithLabelValues("failed").Inc()
		return "", ErrNoSessionURL
	}

	metrics.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	return session.URL, nil
}

func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
