// AngelaMos | 2026
// recorder.go

package webhook

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/entitlement"
	"github.com/angelamos/scoreshop/internal/user"
)

// Recorder applies a confirmed purchase to storage. The buyer row and the
// entitlement land in one transaction or not at all, so a failure between
// the two writes leaves nothing behind for the provider's retry to trip on.
type Recorder struct {
	db *sqlx.DB
}

func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(
	ctx context.Context,
	userID, bundleID, email string,
) (*entitlement.Entitlement, error) {
	var granted *entitlement.Entitlement

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := user.NewRepository(tx).Upsert(ctx, userID, email); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}

		ent, err := entitlement.NewService(
			entitlement.NewRepository(tx),
		).Grant(ctx, userID, bundleID)
		if err != nil {
			return fmt.Errorf("grant entitlement: %w", err)
		}

		granted = ent
		return nil
	})
	if err != nil {
		return nil, err
	}

	return granted, nil
}
