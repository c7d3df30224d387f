package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/platform/respond"
)

// Recover convierte un panic en 500 JSON y lo loguea con el stack.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered", map[string]any{
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
				"path":  r.URL.Path,
			})
			respond.Error(w, nil, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}
