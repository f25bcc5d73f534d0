// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// User is keyed by the identity provider's subject id; this service never
// mints user ids of its own.
type User struct {
	ID        string    `db:"id"         json:"id"`
	Email     string    `db:"email"      json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
