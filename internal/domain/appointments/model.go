package appointments

import "time"

// Appointment es una visita en la cola de atención.
type Appointment struct {
	ID      string
	PetID   string
	StaffID string
	// ServiceID explícito del servicio facturable; si está vacío billing usa el tag de la queja.
	ServiceID string

	VisitAt   time.Time
	Complaint string
	Status    Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// View es un filtro predefinido del listado.
type View string

const (
	ViewAll               View = ""
	ViewActive            View = "active"
	ViewCompletedUnbilled View = "completed-unbilled"
)

// ListFilter para la cola. Orden: VisitAt ascendente.
type ListFilter struct {
	// Day filtra por fecha de visita [Day, Day+24h). Se trunca en la zona de Day.
	Day      *time.Time
	StaffID  string
	PetID    string
	Statuses []Status
	// Unbilled limita a citas sin factura.
	Unbilled bool
	Limit    int
}
