package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/platform/logger"
)

// ErrorBody es el payload estándar de error.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type stockDetail struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// BadRequest para payloads que no llegan a la capa de dominio (json inválido, query mal formada).
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorBody{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: message,
		Code:    domain.CodeValidation,
	})
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, nil, domain.ErrUnauthorized)
}

// Error traduce un error de dominio a status + payload.
// Los 5xx se loguean con el logger del request.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError && r != nil {
		logger.FromContext(r.Context()).Error("request failed", map[string]any{
			"error": err,
			"path":  r.URL.Path,
		})
	}
	JSON(w, status, body)
}

func classify(err error) (int, ErrorBody) {
	var (
		ve  *domain.ValidationError
		sc  *domain.StateConflictError
		ise *domain.InsufficientStockError
	)

	switch {
	case errors.As(err, &ve):
		details := make([]fieldDetail, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			details = append(details, fieldDetail{Field: fe.Field, Message: fe.Message})
		}
		return http.StatusBadRequest, body(http.StatusBadRequest, ve.Error(), domain.CodeValidation, details)

	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, body(http.StatusBadRequest, err.Error(), domain.CodeValidation, nil)

	case errors.As(err, &ise):
		return http.StatusConflict, body(http.StatusConflict, ise.Error(), domain.CodeInsufficientStock, stockDetail{
			ItemID:    ise.ItemID,
			ItemName:  ise.ItemName,
			Requested: ise.Requested,
			Available: ise.Available,
		})

	case errors.As(err, &sc):
		return http.StatusConflict, body(http.StatusConflict, sc.Error(), sc.Code(), map[string]string{
			"entity": sc.Entity,
			"id":     sc.ID,
			"status": sc.Status,
		})

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, body(http.StatusNotFound, err.Error(), domain.CodeNotFound, nil)

	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, body(http.StatusConflict, err.Error(), domain.CodeAlreadyExists, nil)

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, body(http.StatusUnauthorized, "authentication required", domain.CodeUnauthorized, nil)

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, body(http.StatusForbidden, "insufficient role", domain.CodeForbidden, nil)

	default:
		// No exponemos el detalle interno.
		return http.StatusInternalServerError, body(http.StatusInternalServerError, "internal error", domain.CodePersistence, nil)
	}
}

func body(status int, message, code string, details any) ErrorBody {
	return ErrorBody{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	}
}
