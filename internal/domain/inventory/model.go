package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem es un producto inventariado (medicamento, alimento, accesorio).
// Quantity nunca baja de 0: solo la modifican el ledger (descuento) y el restock.
type StockItem struct {
	ID        string
	Name      string
	Category  string
	Unit      string
	UnitPrice decimal.Decimal
	Quantity  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Consumption es un descuento pedido al ledger.
type Consumption struct {
	ItemID   string
	Quantity int
}

// ListFilter para el listado de inventario.
type ListFilter struct {
	Category string
	// LowStockBelow > 0 limita a items con Quantity < LowStockBelow.
	LowStockBelow int
	Query         string
}
