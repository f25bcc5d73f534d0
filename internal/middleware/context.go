// AngelaMos | 2026
// context.go

package middleware

type contextKey string

func (c contextKey) String() string {
	return "scoreshop context key " + string(c)
}
