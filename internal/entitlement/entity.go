// AngelaMos | 2026
// entity.go

package entitlement

import (
	"time"

	"github.com/angelamos/scoreshop/internal/bundle"
)

// Entitlement is the durable proof that a user purchased a bundle. Rows are
// written only by the payment event processor, never updated, never deleted.
// At most one row exists per (user, bundle) pair.
type Entitlement struct {
	ID          string    `db:"id"           json:"id"`
	UserID      string    `db:"user_id"      json:"user_id"`
	BundleID    string    `db:"bundle_id"    json:"bundle_id"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
}

// WithBundle is an entitlement joined with its bundle, as served by the
// library listing.
type WithBundle struct {
	Entitlement
	Bundle bundle.Bundle `json:"bundle"`
}
