package inventory

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, it StockItem) error
	GetByID(ctx context.Context, id string) (StockItem, error)
	List(ctx context.Context, f ListFilter) ([]StockItem, error)
	// UpdateDetails no toca Quantity.
	UpdateDetails(ctx context.Context, it StockItem) error
	Restock(ctx context.Context, id string, qty int, at time.Time) (StockItem, error)

	// ReserveAndDecrement bloquea la fila, compara y descuenta.
	// Si no alcanza devuelve *domain.InsufficientStockError y la fila queda igual.
	ReserveAndDecrement(ctx context.Context, id string, qty int, at time.Time) (StockItem, error)

	// Delete falla con StateConflict (ErrItemInUse) si hay recetas o líneas de factura que lo referencian.
	Delete(ctx context.Context, id string) error
}
