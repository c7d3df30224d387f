package odin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/ports/auth"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
	ErrNoRole     = errors.New("odin claims missing clinic role")
)

// Verifier implementa auth.AuthVerifier usando Odin.
// Un token válido sin rol clínico se rechaza: sin rol no hay permisos por endpoint.
type Verifier struct {
	client *Client
	log    logger.Logger
}

func NewVerifier(client *Client, log logger.Logger) *Verifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Verifier{client: client, log: log.With(map[string]any{"component": "odin_verifier"})}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		// 401 de Odin es rutina; el resto indica que el IAM no responde bien.
		if errors.Is(err, ErrOdinUpstream) || errors.Is(err, ErrOdinNotConfigured) {
			v.log.Warn("odin verify failed", map[string]any{"error": err})
		}
		return auth.Claims{}, fmt.Errorf("odin verify failed: %w", err)
	}

	if claims.Role == "" {
		v.log.Info("token without clinic role", map[string]any{"user_id": claims.UserID})
		return auth.Claims{}, ErrNoRole
	}
	return claims, nil
}
