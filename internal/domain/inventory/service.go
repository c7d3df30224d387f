package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/platform/validation"
)

const DefaultLowStockThreshold = 5

type Options struct {
	// Umbral de "stock bajo" (Quantity < umbral). <= 0 usa DefaultLowStockThreshold.
	LowStockThreshold int
	Logger            logger.Logger
}

// Service es el ledger de stock: la única vía para descontar cantidades.
type Service struct {
	repo     Repository
	txm      domain.TxManager
	log      logger.Logger
	lowStock int
	now      func() time.Time
}

func NewService(repo Repository, txm domain.TxManager, opts Options) *Service {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = DefaultLowStockThreshold
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{
		repo:     repo,
		txm:      txm,
		log:      opts.Logger.With(map[string]any{"component": "stock_ledger"}),
		lowStock: opts.LowStockThreshold,
		now:      time.Now,
	}
}

func (s *Service) LowStockThreshold() int { return s.lowStock }

type CreateInput struct {
	Name      string `field:"name" validate:"required,max=120"`
	Category  string `field:"category" validate:"max=60"`
	Unit      string `field:"unit" validate:"required,max=20"`
	UnitPrice decimal.Decimal
	Quantity  int `field:"quantity" validate:"gte=0"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (StockItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	if err := validation.Struct(in); err != nil {
		return StockItem{}, err
	}
	if in.UnitPrice.IsNegative() {
		return StockItem{}, domain.NewValidationError("unit_price", "must be at least 0")
	}

	now := s.now()
	it := StockItem{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Category:  strings.TrimSpace(in.Category),
		Unit:      in.Unit,
		UnitPrice: in.UnitPrice,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return StockItem{}, domain.Persistence("create stock item", err)
	}
	return it, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (StockItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]StockItem, error) {
	return s.repo.List(ctx, f)
}

// LowStock lista los items por debajo del umbral configurado.
func (s *Service) LowStock(ctx context.Context) ([]StockItem, error) {
	return s.repo.List(ctx, ListFilter{LowStockBelow: s.lowStock})
}

// UpdateInput: nil = no tocar. Un cambio de precio solo afecta previews/facturas futuras.
type UpdateInput struct {
	Name      *string
	Category  *string
	Unit      *string
	UnitPrice *decimal.Decimal
}

func (s *Service) UpdateDetails(ctx context.Context, id string, in UpdateInput) (StockItem, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return StockItem{}, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return StockItem{}, domain.NewValidationError("name", "is required")
		}
		it.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		it.Category = strings.TrimSpace(*in.Category)
	}
	if in.Unit != nil {
		if strings.TrimSpace(*in.Unit) == "" {
			return StockItem{}, domain.NewValidationError("unit", "is required")
		}
		it.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return StockItem{}, domain.NewValidationError("unit_price", "must be at least 0")
		}
		it.UnitPrice = *in.UnitPrice
	}

	it.UpdatedAt = s.now()
	if err := s.repo.UpdateDetails(ctx, it); err != nil {
		return StockItem{}, domain.Persistence("update stock item", err)
	}
	return it, nil
}

func (s *Service) Restock(ctx context.Context, id string, qty int) (StockItem, error) {
	if qty <= 0 {
		return StockItem{}, domain.NewValidationError("quantity", "must be greater than 0")
	}
	it, err := s.repo.Restock(ctx, id, qty, s.now())
	if err != nil {
		return StockItem{}, domain.Persistence("restock item", err)
	}
	s.log.Info("item restocked", map[string]any{"item_id": id, "added": qty, "quantity": it.Quantity})
	return it, nil
}

// ReserveAndDecrement descuenta un solo item en su propia transacción.
func (s *Service) ReserveAndDecrement(ctx context.Context, itemID string, qty int) (StockItem, error) {
	if err := validateConsumption(0, Consumption{ItemID: itemID, Quantity: qty}); err != nil {
		return StockItem{}, err
	}

	var out StockItem
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		it, err := s.repo.ReserveAndDecrement(ctx, itemID, qty, s.now())
		if err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return StockItem{}, domain.Persistence("reserve stock", err)
	}
	return out, nil
}

// ConsumeBatch aplica todos los descuentos de un lote. Debe correr dentro de RunInTx del llamador:
// ante el primer faltante devuelve el error y el rollback del llamador deshace lo ya descontado.
// Los items se bloquean en orden ascendente de id para que dos lotes concurrentes no se crucen.
// Con varias líneas sin stock, el error nombra la primera en ese orden (id menor), no en el del llamador.
func (s *Service) ConsumeBatch(ctx context.Context, lines []Consumption) ([]StockItem, error) {
	for i, c := range lines {
		if err := validateConsumption(i, c); err != nil {
			return nil, err
		}
	}

	ordered := slices.Clone(lines)
	slices.SortStableFunc(ordered, func(a, b Consumption) int {
		return strings.Compare(a.ItemID, b.ItemID)
	})

	now := s.now()
	out := make([]StockItem, 0, len(ordered))
	for _, c := range ordered {
		it, err := s.repo.ReserveAndDecrement(ctx, c.ItemID, c.Quantity, now)
		if err != nil {
			return nil, fmt.Errorf("consume %s: %w", c.ItemID, err)
		}
		if it.Quantity < s.lowStock {
			s.log.Warn("stock below threshold", map[string]any{"item_id": it.ID, "item": it.Name, "quantity": it.Quantity})
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Persistence("delete stock item", err)
	}
	return nil
}

func validateConsumption(i int, c Consumption) error {
	if strings.TrimSpace(c.ItemID) == "" {
		return domain.NewValidationError(fmt.Sprintf("lines[%d].item_id", i), "is required")
	}
	if c.Quantity <= 0 {
		return domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "must be greater than 0")
	}
	return nil
}
