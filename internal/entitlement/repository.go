// AngelaMos | 2026
// repository.go

package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/scoreshop/internal/bundle"
	"github.com/angelamos/scoreshop/internal/core"
)

type Repository interface {
	// Create inserts the entitlement for (userID, bundleID), or returns the
	// existing row when one is already there. The second return reports
	// whether a new row was created.
	Create(
		ctx context.Context,
		userID, bundleID string,
	) (*Entitlement, bool, error)
	Owns(ctx context.Context, userID, bundleID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]WithBundle, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create is the idempotency boundary for webhook replays. The insert defers
// to the unique constraint on (user_id, bundle_id); a losing concurrent
// attempt reads back the winner's row instead of surfacing a conflict.
func (r *repository) Create(
	ctx context.Context,
	userID, bundleID string,
) (*Entitlement, bool, error) {
	insert := `
		INSERT INTO entitlements (id, user_id, bundle_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, bundle_id) DO NOTHING
		RETURNING id, user_id, bundle_id, purchased_at`

	var ent Entitlement
	err := r.db.GetContext(ctx, &ent, insert,
		uuid.New().String(),
		userID,
		bundleID,
	)
	if err == nil {
		return &ent, true, nil
	}
	// DO NOTHING turns the conflict into an empty result; a unique
	// violation can still surface when the arbiter is bypassed (e.g. a
	// racing insert under a stricter isolation level). Both mean the same
	// thing: the pair already exists.
	if !errors.Is(err, sql.ErrNoRows) && !core.IsDuplicateKey(err) {
		return nil, false, fmt.Errorf("create entitlement: %w", err)
	}

	// Rows are never deleted, so the read-back cannot miss.
	existing, err := r.getByPair(ctx, userID, bundleID)
	if err != nil {
		return nil, false, fmt.Errorf("read existing entitlement: %w", err)
	}

	return existing, false, nil
}

func (r *repository) getByPair(
	ctx context.Context,
	userID, bundleID string,
) (*Entitlement, error) {
	query := `
		SELECT id, user_id, bundle_id, purchased_at
		FROM entitlements
		WHERE user_id = $1 AND bundle_id = $2`

	var ent Entitlement
	if err := r.db.GetContext(ctx, &ent, query, userID, bundleID); err != nil {
		return nil, err
	}

	return &ent, nil
}

func (r *repository) Owns(
	ctx context.Context,
	userID, bundleID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM entitlements
			WHERE user_id = $1 AND bundle_id = $2
		)`

	var owns bool
	if err := r.db.GetContext(ctx, &owns, query, userID, bundleID); err != nil {
		return false, fmt.Errorf("check ownership: %w", err)
	}

	return owns, nil
}

type libraryRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	BundleID    string    `db:"bundle_id"`
	PurchasedAt time.Time `db:"purchased_at"`

	BID          string    `db:"b_id"`
	BTitle       string    `db:"b_title"`
	BDescription string    `db:"b_description"`
	BPrice       float64   `db:"b_price"`
	BMetadataURL string    `db:"b_metadata_url"`
	BCreatedAt   time.Time `db:"b_created_at"`
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]WithBundle, error) {
	query := `
		SELECT e.id, e.user_id, e.bundle_id, e.purchased_at,
		       b.id AS b_id, b.title AS b_title,
		       b.description AS b_description, b.price AS b_price,
		       b.metadata_url AS b_metadata_url, b.created_at AS b_created_at
		FROM entitlements e
		JOIN bundles b ON b.id = e.bundle_id
		WHERE e.user_id = $1
		ORDER BY e.purchased_at DESC`

	var rows []libraryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}

	out := make([]WithBundle, 0, len(rows))
	for _, row := range rows {
		out = append(out, WithBundle{
			Entitlement: Entitlement{
				ID:          row.ID,
				UserID:      row.UserID,
				BundleID:    row.BundleID,
				PurchasedAt: row.PurchasedAt,
			},
			Bundle: bundle.Bundle{
				ID:          row.BID,
				Title:       row.BTitle,
				Description: row.BDescription,
				Price:       row.BPrice,
				MetadataURL: row.BMetadataURL,
				CreatedAt:   row.BCreatedAt,
			},
		})
	}

	return out, nil
}
