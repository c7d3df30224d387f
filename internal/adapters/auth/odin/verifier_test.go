package odin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/ports/auth"
)

func newOdin(t *testing.T, handler http.HandlerFunc) *Verifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k-1", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return NewVerifier(c, logger.Nop())
}

func TestVerify_OK(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != verifyPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "k-1" {
			t.Errorf("missing api key header")
		}
		var req verifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Token != "tok" {
			t.Errorf("unexpected token %q", req.Token)
		}
		_ = json.NewEncoder(w).Encode(verifyResponse{UserID: " u-1 ", Email: "vet@clinic.test", Role: "Doctor"})
	})

	claims, err := v.Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != auth.RoleDoctor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerify_Unauthorized(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := v.Verify(context.Background(), "tok")
	if !errors.Is(err, ErrOdinUnauthorized) {
		t.Fatalf("expected ErrOdinUnauthorized, got %v", err)
	}
}

func TestVerify_UpstreamError(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := v.Verify(context.Background(), "tok")
	if !errors.Is(err, ErrOdinUpstream) {
		t.Fatalf("expected ErrOdinUpstream, got %v", err)
	}
}

func TestVerify_MissingRole(t *testing.T) {
	v := newOdin(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(verifyResponse{UserID: "u-1"})
	})

	_, err := v.Verify(context.Background(), "tok")
	if !errors.Is(err, ErrNoRole) {
		t.Fatalf("expected ErrNoRole, got %v", err)
	}
}

func TestVerify_EmptyTokenAndNotConfigured(t *testing.T) {
	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := NewVerifier(c, nil).Verify(context.Background(), "tok"); !errors.Is(err, ErrOdinNotConfigured) {
		t.Fatalf("expected ErrOdinNotConfigured, got %v", err)
	}
	if _, err := NewVerifier(c, nil).Verify(context.Background(), "  "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}
