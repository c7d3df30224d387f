package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClinicService es un servicio facturable (consulta, vacunación, grooming...).
// El nombre es único sin distinguir mayúsculas; es lo que se referencia con "[Nombre]" en la queja.
type ClinicService struct {
	ID          string
	Name        string
	Description string
	BasePrice   decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}
