// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelamos/scoreshop/internal/core"
)

type stubVerifier struct {
	identity *Identity
	err      error
}

func (s *stubVerifier) Verify(
	_ context.Context,
	_ string,
) (*Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id":       GetUserID(r.Context()),
			"email":         GetUserEmail(r.Context()),
			"authenticated": IsAuthenticated(r.Context()),
		})
	})
}

func doRequest(
	t *testing.T,
	handler http.Handler,
	authHeader string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/entitlements", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestAuthenticatorMissingToken(t *testing.T) {
	verifier := &stubVerifier{identity: &Identity{Subject: "user-1"}}
	handler := Authenticator(verifier)(echoIdentity())

	rec := doRequest(t, handler, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	body := decodeError(t, rec)
	if body["error"] != core.KindUnauthorized {
		t.Errorf("error kind = %q, want %q", body["error"], core.KindUnauthorized)
	}
}

func TestAuthenticatorMalformedHeader(t *testing.T) {
	verifier := &stubVerifier{identity: &Identity{Subject: "user-1"}}
	handler := Authenticator(verifier)(echoIdentity())

	for _, header := range []string{
		"token-without-scheme",
		"Basic dXNlcjpwYXNz",
	} {
		rec := doRequest(t, handler, header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthenticatorInvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: core.ErrTokenInvalid}
	handler := Authenticator(verifier)(echoIdentity())

	rec := doRequest(t, handler, "Bearer not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticatorExpiredToken(t *testing.T) {
	verifier := &stubVerifier{err: core.ErrTokenExpired}
	handler := Authenticator(verifier)(echoIdentity())

	rec := doRequest(t, handler, "Bearer expired-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	body := decodeError(t, rec)
	if body["message"] != "token has expired" {
		t.Errorf("message = %q, want expiry message", body["message"])
	}
}

func TestAuthenticatorPropagatesIdentity(t *testing.T) {
	verifier := &stubVerifier{
		identity: &Identity{Subject: "user-1", Email: "buyer@example.com"},
	}
	handler := Authenticator(verifier)(echoIdentity())

	rec := doRequest(t, handler, "Bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		UserID        string `json:"user_id"`
		Email         string `json:"email"`
		Authenticated bool   `json:"authenticated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.UserID != "user-1" || body.Email != "buyer@example.com" {
		t.Errorf("unexpected identity: %+v", body)
	}
	if !body.Authenticated {
		t.Error("IsAuthenticated must report true behind the authenticator")
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	verifier := &stubVerifier{err: core.ErrTokenInvalid}
	handler := OptionalAuth(verifier)(echoIdentity())

	for _, header := range []string{"", "Bearer bad-token"} {
		rec := doRequest(t, handler, header)
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: status = %d, want 200", header, rec.Code)
		}

		var body struct {
			Authenticated bool `json:"authenticated"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Authenticated {
			t.Errorf("header %q: expected anonymous request", header)
		}
	}
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := ExtractToken(req); got != tc.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
