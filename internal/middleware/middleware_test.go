package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"

	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/ports/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) Verify(_ context.Context, _ string) (auth.Claims, error) {
	return s.claims, s.err
}

func claimsEcho(t *testing.T, want *auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		if want == nil {
			if ok {
				t.Fatalf("expected no claims, got %+v", c)
			}
			return
		}
		if !ok || c != *want {
			t.Fatalf("expected claims %+v, got %+v (ok=%v)", *want, c, ok)
		}
	})
}

func TestAuthContext_DevMode(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	AuthContext(nil)(claimsEcho(t, &auth.Claims{UserID: "u-1", Role: auth.RoleAdmin})).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-2")
	req.Header.Set("X-Debug-Role", "Doctor")
	AuthContext(nil)(claimsEcho(t, &auth.Claims{UserID: "u-2", Role: auth.RoleDoctor})).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	AuthContext(nil)(claimsEcho(t, nil)).ServeHTTP(httptest.NewRecorder(), req)
}

func TestAuthContext_VerifierMode(t *testing.T) {
	want := auth.Claims{UserID: "u-1", Role: auth.RoleReceptionist}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	AuthContext(stubVerifier{claims: want})(claimsEcho(t, &want)).ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	AuthContext(stubVerifier{err: errors.New("bad token")})(claimsEcho(t, nil)).ServeHTTP(httptest.NewRecorder(), req)

	// el header de debug se ignora cuando hay verifier
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	AuthContext(stubVerifier{claims: want})(claimsEcho(t, nil)).ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole(auth.RoleAdmin, auth.RoleReceptionist)(ok)

	tests := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"doctor forbidden", &auth.Claims{UserID: "u", Role: auth.RoleDoctor}, http.StatusForbidden},
		{"receptionist allowed", &auth.Claims{UserID: "u", Role: auth.RoleReceptionist}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/billing/generate", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), *tt.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRecoverAndRequestLog(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Format: logger.FormatJSON, Output: &buf})

	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	h := RequestID(RequestLog(log)(Recover(boom)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get(chimw.RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
	out := buf.String()
	if !strings.Contains(out, "panic recovered") || !strings.Contains(out, `"status":500`) {
		t.Fatalf("expected panic and request log lines, got %s", out)
	}
}
