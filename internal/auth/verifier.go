// AngelaMos | 2026
// verifier.go

// Package auth verifies bearer credentials against the external identity
// provider's published JWKS. This service never issues tokens of its own.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/angelamos/scoreshop/internal/config"
	"github.com/angelamos/scoreshop/internal/core"
	"github.com/angelamos/scoreshop/internal/metrics"
	"github.com/angelamos/scoreshop/internal/middleware"
)

// Verifier validates bearer tokens against the issuer's JWKS. The key set is
// cached with a bounded TTL; a token signed by a key the cached set does not
// know triggers exactly one forced refresh before the token is rejected.
type Verifier struct {
	cfg     config.AuthConfig
	jwksURL string
	client  *http.Client

	mu        sync.RWMutex
	keys      jwk.Set
	fetchedAt time.Time
}

func NewVerifier(cfg config.AuthConfig) *Verifier {
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}

	return &Verifier{
		cfg:     cfg,
		jwksURL: cfg.JWKSURL(),
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

// Verify checks signature, expiry, issuer, and (when configured) audience.
// Any failure yields an error and no partially-trusted identity.
func (v *Verifier) Verify(
	ctx context.Context,
	token string,
) (*middleware.Identity, error) {
	keys, cached, err := v.keySet(ctx, false)
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("jwks_unavailable").Inc()
		return nil, fmt.Errorf("resolve signing keys: %w", core.ErrTokenInvalid)
	}

	parsed, err := v.parse(token, keys)
	if err != nil && cached && !isTokenExpiredError(err) {
		// The issuer may have rotated keys since the last fetch. Refresh
		// once, then fail for good.
		keys, _, refreshErr := v.keySet(ctx, true)
		if refreshErr == nil {
			parsed, err = v.parse(token, keys)
		}
	}
	if err != nil {
		if isTokenExpiredError(err) {
			metrics.AuthFailuresTotal.WithLabelValues("expired").Inc()
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := parsed.Subject()
	if !ok || subject == "" {
		metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var email string
	//nolint:errcheck // email claim is optional
	_ = parsed.Get("email", &email)

	return &middleware.Identity{
		Subject: subject,
		Email:   email,
	}, nil
}

func (v *Verifier) parse(token string, keys jwk.Set) (jwt.Token, error) {
	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.cfg.IssuerURL),
	}

	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	return jwt.Parse([]byte(token), opts...)
}

// keySet returns the JWKS, fetching when the cache is empty, expired, or a
// forced refresh is requested. The second return reports whether the set came
// from cache. A failed refresh falls back to the stale set when one exists;
// the issuer rate-limits JWKS fetches, so occasional staleness beats failing
// hard.
func (v *Verifier) keySet(
	ctx context.Context,
	force bool,
) (jwk.Set, bool, error) {
	ttl := v.cfg.JWKSCacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	v.mu.RLock()
	if v.keys != nil && !force && time.Since(v.fetchedAt) < ttl {
		keys := v.keys
		v.mu.RUnlock()
		return keys, true, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys != nil && !force && time.Since(v.fetchedAt) < ttl {
		return v.keys, true, nil
	}

	fetched, err := jwk.Fetch(ctx, v.jwksURL, jwk.WithHTTPClient(v.client))
	if err != nil {
		if v.keys != nil {
			return v.keys, true, nil
		}
		return nil, false, fmt.Errorf("fetch jwks: %w", err)
	}

	v.keys = fetched
	v.fetchedAt = time.Now()

	return v.keys, false, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
