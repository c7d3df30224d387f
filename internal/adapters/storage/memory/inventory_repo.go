package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/invoices"
)

type inventoryRepo struct {
	s *Store
}

func NewInventoryRepo(s *Store) inventory.Repository {
	return &inventoryRepo{s: s}
}

func (r *inventoryRepo) Create(ctx context.Context, it inventory.StockItem) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.items[it.ID]; exists {
		return alreadyExists("stock item", it.ID)
	}
	r.s.items[it.ID] = it
	return nil
}

func (r *inventoryRepo) GetByID(ctx context.Context, id string) (inventory.StockItem, error) {
	defer r.s.lock(ctx)()

	it, ok := r.s.items[id]
	if !ok {
		return inventory.StockItem{}, notFound("stock item", id)
	}
	return it, nil
}

func (r *inventoryRepo) List(ctx context.Context, f inventory.ListFilter) ([]inventory.StockItem, error) {
	defer r.s.lock(ctx)()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]inventory.StockItem, 0)
	for _, it := range r.s.items {
		if f.Category != "" && !strings.EqualFold(it.Category, f.Category) {
			continue
		}
		if f.LowStockBelow > 0 && it.Quantity >= f.LowStockBelow {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *inventoryRepo) UpdateDetails(ctx context.Context, it inventory.StockItem) error {
	defer r.s.lock(ctx)()

	cur, ok := r.s.items[it.ID]
	if !ok {
		return notFound("stock item", it.ID)
	}
	it.Quantity = cur.Quantity
	it.CreatedAt = cur.CreatedAt
	r.s.items[it.ID] = it
	return nil
}

func (r *inventoryRepo) Restock(ctx context.Context, id string, qty int, at time.Time) (inventory.StockItem, error) {
	defer r.s.lock(ctx)()

	it, ok := r.s.items[id]
	if !ok {
		return inventory.StockItem{}, notFound("stock item", id)
	}
	it.Quantity += qty
	it.UpdatedAt = at
	r.s.items[id] = it
	return it, nil
}

// ReserveAndDecrement compara y descuenta bajo el mismo lock.
func (r *inventoryRepo) ReserveAndDecrement(ctx context.Context, id string, qty int, at time.Time) (inventory.StockItem, error) {
	defer r.s.lock(ctx)()

	it, ok := r.s.items[id]
	if !ok {
		return inventory.StockItem{}, notFound("stock item", id)
	}
	if it.Quantity < qty {
		return inventory.StockItem{}, &domain.InsufficientStockError{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Requested: qty,
			Available: it.Quantity,
		}
	}
	it.Quantity -= qty
	it.UpdatedAt = at
	r.s.items[id] = it
	return it, nil
}

func (r *inventoryRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	it, ok := r.s.items[id]
	if !ok {
		return notFound("stock item", id)
	}
	if r.referenced(id) {
		return domain.NewStateConflict(domain.ErrItemInUse, "stock_item", id, it.Name)
	}
	delete(r.s.items, id)
	return nil
}

// referenced: hay recetas o líneas de factura que apuntan al item.
func (r *inventoryRepo) referenced(id string) bool {
	for _, rec := range r.s.records {
		for _, p := range rec.Prescriptions {
			if p.ItemID == id {
				return true
			}
		}
	}
	for _, inv := range r.s.invoices {
		for _, l := range inv.Lines {
			if l.Kind == invoices.LineItem && l.RefID == id {
				return true
			}
		}
	}
	return false
}
