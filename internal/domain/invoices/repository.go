package invoices

import "context"

type Repository interface {
	// Create inserta factura y líneas como una unidad (dentro de la transacción del contexto).
	// ErrAlreadyExists si la cita ya tiene factura.
	Create(ctx context.Context, inv Invoice) error
	GetByID(ctx context.Context, id string) (Invoice, error)
	GetByAppointment(ctx context.Context, appointmentID string) (Invoice, error)
	ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error)
	// ListByOwner: más reciente primero.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Invoice, error)
	Delete(ctx context.Context, id string) error
}
