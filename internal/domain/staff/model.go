package staff

import "time"

// Position es el puesto dentro de la clínica (no confundir con el rol de autenticación).
// @Enum doctor, groomer, receptionist, admin
type Position string

const (
	PositionDoctor       Position = "doctor"
	PositionGroomer      Position = "groomer"
	PositionReceptionist Position = "receptionist"
	PositionAdmin        Position = "admin"
)

// Member es un integrante del personal; las citas se asignan a uno.
type Member struct {
	ID             string
	Name           string
	Position       Position
	Specialization string
	Phone          string

	CreatedAt time.Time
}
