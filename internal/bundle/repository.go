// AngelaMos | 2026
// repository.go

package bundle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/scoreshop/internal/core"
)

type Repository interface {
	List(ctx context.Context) ([]Bundle, error)
	GetByID(ctx context.Context, id string) (*Bundle, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Bundle, error) {
	query := `
		SELECT id, title, description, price, metadata_url, created_at
		FROM bundles
		ORDER BY created_at DESC`

	var bundles []Bundle
	if err := r.db.SelectContext(ctx, &bundles, query); err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}

	return bundles, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Bundle, error) {
	query := `
		SELECT id, title, description, price, metadata_url, created_at
		FROM bundles
		WHERE id = $1`

	var b Bundle
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bundle: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bundle: %w", err)
	}

	return &b, nil
}
