// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/scoreshop/internal/core"
)

type Repository interface {
	Upsert(ctx context.Context, id, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Upsert creates the user on first sight and keeps email current afterwards.
// An empty inbound email never clobbers a stored one; payment events do not
// always carry the customer's address.
func (r *repository) Upsert(
	ctx context.Context,
	id, email string,
) (*User, error) {
	query := `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET email = CASE
			WHEN EXCLUDED.email <> '' THEN EXCLUDED.email
			ELSE users.email
		END
		RETURNING id, email, created_at`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id, email); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, created_at
		FROM users
		WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}
