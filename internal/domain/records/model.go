package records

import "time"

// ClinicalRecord es la ficha de una consulta. Una por cita, inmutable.
type ClinicalRecord struct {
	ID            string
	AppointmentID string
	PetID         string

	Diagnosis string
	Treatment string
	Notes     string

	CreatedAt time.Time

	Prescriptions []PrescriptionLine
}

// PrescriptionLine es un item recetado; su cantidad ya fue descontada del stock.
type PrescriptionLine struct {
	ID           string
	RecordID     string
	ItemID       string
	Quantity     int
	Instructions string
	Position     int
}

// HistoryFilter para el historial clínico de una mascota (más reciente primero).
type HistoryFilter struct {
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}
