package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores sentinela compartidos por todas las capas.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrStateConflict     = errors.New("state conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPersistence       = errors.New("persistence error")
)

// Variantes de StateConflict. Siempre se envuelven junto con ErrStateConflict.
var (
	ErrAppointmentNotEligible  = errors.New("appointment not eligible")
	ErrAppointmentNotCompleted = errors.New("appointment not completed")
	ErrAlreadyBilled           = errors.New("already billed")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrItemInUse               = errors.New("item in use")
)

// Códigos estables expuestos en la API.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeAppointmentNotEligible = "APPOINTMENT_NOT_ELIGIBLE"
	CodeAppointmentNotComplete = "APPOINTMENT_NOT_COMPLETED"
	CodeAlreadyBilled          = "ALREADY_BILLED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeItemInUse              = "ITEM_IN_USE"
	CodePersistence            = "PERSISTENCE_ERROR"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
)

// FieldError describe un error de validación de un campo.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError agrupa errores de validación por campo.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field)
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError crea un ValidationError para un solo campo.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors crea un ValidationError a partir de varios campos.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// StateConflictError: la operación no aplica al estado actual de la entidad.
type StateConflictError struct {
	Kind   error // ErrAppointmentNotEligible, ErrAlreadyBilled, ...
	Entity string
	ID     string
	Status string
}

func (e *StateConflictError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Entity, e.ID, e.Kind)
	if e.Status != "" {
		msg += fmt.Sprintf(" (status=%s)", e.Status)
	}
	return msg
}

func (e *StateConflictError) Unwrap() []error { return []error{e.Kind, ErrStateConflict} }

// Code devuelve el código estable de la variante.
func (e *StateConflictError) Code() string {
	switch {
	case errors.Is(e.Kind, ErrAppointmentNotEligible):
		return CodeAppointmentNotEligible
	case errors.Is(e.Kind, ErrAppointmentNotCompleted):
		return CodeAppointmentNotComplete
	case errors.Is(e.Kind, ErrAlreadyBilled):
		return CodeAlreadyBilled
	case errors.Is(e.Kind, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(e.Kind, ErrItemInUse):
		return CodeItemInUse
	default:
		return "STATE_CONFLICT"
	}
}

func NewStateConflict(kind error, entity, id, status string) *StateConflictError {
	return &StateConflictError{Kind: kind, Entity: entity, ID: id, Status: status}
}

// InsufficientStockError: un descuento dejaría la cantidad en negativo.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.ItemName
	if name == "" {
		name = e.ItemID
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError envuelve fallas de almacenamiento no clasificadas.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{e.Err, ErrPersistence} }

// Persistence deja pasar los errores ya clasificados y envuelve el resto.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsClassified indica si err ya pertenece a la taxonomía de dominio.
func IsClassified(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrValidation,
		ErrStateConflict,
		ErrInsufficientStock,
		ErrPersistence,
		ErrUnauthorized,
		ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
