package appointments

import (
	"context"
	"time"
)

type Repository interface {
	// Create falla con ErrNotFound si pet, staff o service no existen.
	Create(ctx context.Context, a Appointment) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	// GetForUpdate lee y bloquea la fila hasta el fin de la transacción del contexto.
	GetForUpdate(ctx context.Context, id string) (Appointment, error)
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	List(ctx context.Context, f ListFilter) ([]Appointment, error)
}
