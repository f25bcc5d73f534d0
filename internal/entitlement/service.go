// AngelaMos | 2026
// service.go

package entitlement

import (
	"context"

	"github.com/angelamos/scoreshop/internal/metrics"
)

// Service is the ownership ledger's front door. Grant is safe to call any
// number of times for the same pair.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Grant(
	ctx context.Context,
	userID, bundleID string,
) (*Entitlement, error) {
	ent, created, err := s.repo.Create(ctx, userID, bundleID)
	if err != nil {
		return nil, err
	}

	if created {
		metrics.EntitlementsGrantedTotal.WithLabelValues("created").Inc()
	} else {
		metrics.EntitlementsGrantedTotal.WithLabelValues("replayed").Inc()
	}

	return ent, nil
}

func (s *Service) OwnsBundle(
	ctx context.Context,
	userID, bundleID string,
) (bool, error) {
	return s.repo.Owns(ctx, userID, bundleID)
}

func (s *Service) ListForUser(
	ctx context.Context,
	userID string,
) ([]WithBundle, error) {
	return s.repo.ListForUser(ctx, userID)
}
