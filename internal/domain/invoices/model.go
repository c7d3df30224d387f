package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineKind indica a qué referencia una línea de factura.
type LineKind string

const (
	LineService LineKind = "service"
	LineItem    LineKind = "item"
)

// Invoice es la factura de una cita (a lo sumo una por cita).
// Los precios de sus líneas son una foto tomada al emitirla.
type Invoice struct {
	ID            string
	AppointmentID string
	OwnerID       string

	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string

	CreatedAt time.Time

	Lines []Line
}

type Line struct {
	ID        string
	InvoiceID string
	Kind      LineKind
	// RefID es el id del servicio o del item según Kind.
	RefID       string
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
	Position    int
}
