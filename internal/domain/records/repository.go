package records

import "context"

type Repository interface {
	// Create inserta solo la ficha; ErrAlreadyExists si la cita ya tiene una.
	Create(ctx context.Context, rec ClinicalRecord) error
	AddPrescriptions(ctx context.Context, recordID string, lines []PrescriptionLine) error

	// Las lecturas devuelven la ficha con sus recetas en orden.
	GetByID(ctx context.Context, id string) (ClinicalRecord, error)
	GetByAppointment(ctx context.Context, appointmentID string) (ClinicalRecord, error)
	ListByPet(ctx context.Context, petID string, f HistoryFilter) ([]ClinicalRecord, error)
}
