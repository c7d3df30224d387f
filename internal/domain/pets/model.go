package pets

import "time"

// Species define las especies atendidas.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesOther:
		return true
	default:
		return false
	}
}

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Owner es el cliente responsable de una o más mascotas (y quien recibe la factura).
type Owner struct {
	ID      string
	Name    string
	Phone   string
	Email   string
	Address string

	CreatedAt time.Time
}

// Pet representa el paciente de la clínica.
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate *time.Time
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}
