package postgres

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/inventory"
)

type InventoryRepo struct {
	db DB
}

func NewInventoryRepo(db DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

var itemColumns = []string{"id", "name", "category", "unit", "unit_price::text", "quantity", "created_at", "updated_at"}

func scanItem(row interface{ Scan(dest ...any) error }) (inventory.StockItem, error) {
	var it inventory.StockItem
	var price string
	if err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Unit, &price, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return inventory.StockItem{}, err
	}
	p, err := parseMoney("unit_price", price)
	if err != nil {
		return inventory.StockItem{}, err
	}
	it.UnitPrice = p
	return it, nil
}

func (r *InventoryRepo) Create(ctx context.Context, it inventory.StockItem) error {
	_, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO stock_items (id, name, category, unit, unit_price, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, it.ID, it.Name, it.Category, it.Unit, it.UnitPrice, it.Quantity, it.CreatedAt, it.UpdatedAt)
	return mapError(err, "stock item", it.ID)
}

func (r *InventoryRepo) GetByID(ctx context.Context, id string) (inventory.StockItem, error) {
	query, args, err := psql.Select(itemColumns...).From("stock_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return inventory.StockItem{}, err
	}
	it, err := scanItem(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return inventory.StockItem{}, mapError(err, "stock item", id)
	}
	return it, nil
}

func (r *InventoryRepo) List(ctx context.Context, f inventory.ListFilter) ([]inventory.StockItem, error) {
	b := psql.Select(itemColumns...).From("stock_items").OrderBy("name ASC")
	if c := strings.TrimSpace(f.Category); c != "" {
		b = b.Where("lower(category) = lower(?)", c)
	}
	if f.LowStockBelow > 0 {
		b = b.Where(sq.Lt{"quantity": f.LowStockBelow})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		b = b.Where(sq.ILike{"name": "%" + q + "%"})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "stock items", "list")
	}
	defer rows.Close()

	out := make([]inventory.StockItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapError(err, "stock items", "list")
		}
		out = append(out, it)
	}
	return out, mapError(rows.Err(), "stock items", "list")
}

func (r *InventoryRepo) UpdateDetails(ctx context.Context, it inventory.StockItem) error {
	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE stock_items
		SET name = $2, category = $3, unit = $4, unit_price = $5, updated_at = $6
		WHERE id = $1
	`, it.ID, it.Name, it.Category, it.Unit, it.UnitPrice, it.UpdatedAt)
	if err != nil {
		return mapError(err, "stock item", it.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("stock item", it.ID)
	}
	return nil
}

func (r *InventoryRepo) Restock(ctx context.Context, id string, qty int, at time.Time) (inventory.StockItem, error) {
	query, args, err := psql.Update("stock_items").
		Set("quantity", sq.Expr("quantity + ?", qty)).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(itemColumns, ", ")).
		ToSql()
	if err != nil {
		return inventory.StockItem{}, err
	}
	it, err := scanItem(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return inventory.StockItem{}, mapError(err, "stock item", id)
	}
	return it, nil
}

// ReserveAndDecrement: SELECT ... FOR UPDATE y luego UPDATE sobre la fila bloqueada.
// Debe correr dentro de una transacción para que el bloqueo dure hasta el commit.
func (r *InventoryRepo) ReserveAndDecrement(ctx context.Context, id string, qty int, at time.Time) (inventory.StockItem, error) {
	q := QuerierFromCtx(ctx, r.db)

	query, args, err := psql.Select(itemColumns...).From("stock_items").Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return inventory.StockItem{}, err
	}
	it, err := scanItem(q.QueryRow(ctx, query, args...))
	if err != nil {
		return inventory.StockItem{}, mapError(err, "stock item", id)
	}

	if it.Quantity < qty {
		return inventory.StockItem{}, &domain.InsufficientStockError{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Requested: qty,
			Available: it.Quantity,
		}
	}

	if _, err := q.Exec(ctx, `
		UPDATE stock_items SET quantity = quantity - $2, updated_at = $3 WHERE id = $1
	`, id, qty, at); err != nil {
		return inventory.StockItem{}, mapError(err, "stock item", id)
	}

	it.Quantity -= qty
	it.UpdatedAt = at
	return it, nil
}

func (r *InventoryRepo) Delete(ctx context.Context, id string) error {
	q := QuerierFromCtx(ctx, r.db)

	var name string
	var inUse bool
	err := q.QueryRow(ctx, `
		SELECT name,
			EXISTS(SELECT 1 FROM prescription_lines WHERE item_id = $1)
			OR EXISTS(SELECT 1 FROM invoice_lines WHERE item_id = $1)
		FROM stock_items
		WHERE id = $1
	`, id).Scan(&name, &inUse)
	if err != nil {
		return mapError(err, "stock item", id)
	}
	if inUse {
		return domain.NewStateConflict(domain.ErrItemInUse, "stock_item", id, name)
	}

	if _, err := q.Exec(ctx, `DELETE FROM stock_items WHERE id = $1`, id); err != nil {
		// carrera con una receta recién insertada
		if isForeignKeyViolation(err) {
			return domain.NewStateConflict(domain.ErrItemInUse, "stock_item", id, name)
		}
		return mapError(err, "stock item", id)
	}
	return nil
}
