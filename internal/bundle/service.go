// AngelaMos | 2026
// service.go

package bundle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelamos/scoreshop/internal/storage"
)

type Service struct {
	repo  Repository
	store storage.ObjectStore
}

func NewService(repo Repository, store storage.ObjectStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
	}
}

func (s *Service) List(ctx context.Context) ([]Bundle, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Bundle, error) {
	return s.repo.GetByID(ctx, id)
}

// Metadata fetches and decodes the bundle's metadata object. Callers decide
// how a failure surfaces; the catalog endpoint degrades to a null metadata
// field while the download path treats it as nothing-to-download.
func (s *Service) Metadata(
	ctx context.Context,
	b *Bundle,
) (*Metadata, error) {
	if b.MetadataURL == "" {
		return nil, nil
	}

	body, err := s.store.GetObject(ctx, b.MetadataURL)
	if err != nil {
		return nil, fmt.Errorf("fetch bundle metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode bundle metadata: %w", err)
	}

	return &meta, nil
}
