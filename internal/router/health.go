package router

import (
	"context"
	"net/http"
	"time"

	"pet-clinic-ops/internal/platform/respond"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Storage   string    `json:"storage,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// live: el proceso responde.
func live(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now()})
}

// ready: además el storage responde (ping con timeout corto).
func ready(ping func(ctx context.Context) error, storage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if ping != nil {
			if err := ping(ctx); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "down", Storage: storage, Timestamp: time.Now()})
				return
			}
		}
		respond.JSON(w, http.StatusOK, healthResponse{Status: "ok", Storage: storage, Timestamp: time.Now()})
	}
}
