package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"pet-clinic-ops/internal/domain/invoices"
)

type InvoicesRepo struct {
	db DB
}

func NewInvoicesRepo(db DB) *InvoicesRepo {
	return &InvoicesRepo{db: db}
}

var invoiceColumns = []string{
	"id", "appointment_id", "owner_id",
	"subtotal::text", "discount::text", "total::text",
	"payment_method", "created_at",
}

func scanInvoice(row interface{ Scan(dest ...any) error }) (invoices.Invoice, error) {
	var inv invoices.Invoice
	var subtotal, discount, total string
	if err := row.Scan(&inv.ID, &inv.AppointmentID, &inv.OwnerID, &subtotal, &discount, &total, &inv.PaymentMethod, &inv.CreatedAt); err != nil {
		return invoices.Invoice{}, err
	}
	var err error
	if inv.Subtotal, err = parseMoney("subtotal", subtotal); err != nil {
		return invoices.Invoice{}, err
	}
	if inv.Discount, err = parseMoney("discount", discount); err != nil {
		return invoices.Invoice{}, err
	}
	if inv.Total, err = parseMoney("total", total); err != nil {
		return invoices.Invoice{}, err
	}
	return inv, nil
}

// Create inserta cabecera y líneas; la unicidad por cita la garantiza el índice UNIQUE.
func (r *InvoicesRepo) Create(ctx context.Context, inv invoices.Invoice) error {
	q := QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO invoices (id, appointment_id, owner_id, subtotal, discount, total, payment_method, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, inv.ID, inv.AppointmentID, inv.OwnerID, inv.Subtotal, inv.Discount, inv.Total, inv.PaymentMethod, inv.CreatedAt)
	if err != nil {
		return mapError(err, "invoice for appointment", inv.AppointmentID)
	}

	if len(inv.Lines) == 0 {
		return nil
	}
	b := psql.Insert("invoice_lines").Columns(
		"id", "invoice_id", "kind", "service_id", "item_id",
		"description", "unit", "unit_price", "quantity", "subtotal", "position",
	)
	for _, l := range inv.Lines {
		var serviceID, itemID any
		if l.Kind == invoices.LineService {
			serviceID = l.RefID
		} else {
			itemID = l.RefID
		}
		b = b.Values(l.ID, inv.ID, l.Kind, serviceID, itemID, l.Description, l.Unit, l.UnitPrice, l.Quantity, l.Subtotal, l.Position)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return mapError(err, "invoice lines", inv.ID)
	}
	return nil
}

func (r *InvoicesRepo) getOne(ctx context.Context, col, val string) (invoices.Invoice, error) {
	query, args, err := psql.Select(invoiceColumns...).From("invoices").Where(sq.Eq{col: val}).ToSql()
	if err != nil {
		return invoices.Invoice{}, err
	}
	inv, err := scanInvoice(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return invoices.Invoice{}, mapError(err, "invoice", val)
	}
	if err := r.attachLines(ctx, []*invoices.Invoice{&inv}); err != nil {
		return invoices.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoicesRepo) GetByID(ctx context.Context, id string) (invoices.Invoice, error) {
	return r.getOne(ctx, "id", id)
}

func (r *InvoicesRepo) GetByAppointment(ctx context.Context, appointmentID string) (invoices.Invoice, error) {
	return r.getOne(ctx, "appointment_id", appointmentID)
}

func (r *InvoicesRepo) ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	var exists bool
	err := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM invoices WHERE appointment_id = $1)`, appointmentID,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "invoice for appointment", appointmentID)
	}
	return exists, nil
}

func (r *InvoicesRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]invoices.Invoice, error) {
	b := psql.Select(invoiceColumns...).From("invoices").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "invoices of owner", ownerID)
	}
	out := make([]invoices.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, mapError(err, "invoices of owner", ownerID)
		}
		out = append(out, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "invoices of owner", ownerID)
	}

	ptrs := make([]*invoices.Invoice, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := r.attachLines(ctx, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete: las líneas caen por ON DELETE CASCADE.
func (r *InvoicesRepo) Delete(ctx context.Context, id string) error {
	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "invoice", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("invoice", id)
	}
	return nil
}

func (r *InvoicesRepo) attachLines(ctx context.Context, invs []*invoices.Invoice) error {
	if len(invs) == 0 {
		return nil
	}
	byID := make(map[string]*invoices.Invoice, len(invs))
	ids := make([]string, 0, len(invs))
	for _, inv := range invs {
		inv.Lines = []invoices.Line{}
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}

	query, args, err := psql.Select(
		"id", "invoice_id", "kind", "COALESCE(service_id, item_id)",
		"description", "unit", "unit_price::text", "quantity", "subtotal::text", "position",
	).
		From("invoice_lines").
		Where(sq.Eq{"invoice_id": ids}).
		OrderBy("invoice_id", "position").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return mapError(err, "invoice lines", "batch")
	}
	defer rows.Close()

	for rows.Next() {
		var l invoices.Line
		var unitPrice, subtotal string
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Kind, &l.RefID, &l.Description, &l.Unit, &unitPrice, &l.Quantity, &subtotal, &l.Position); err != nil {
			return mapError(err, "invoice lines", "batch")
		}
		if l.UnitPrice, err = parseMoney("unit_price", unitPrice); err != nil {
			return err
		}
		if l.Subtotal, err = parseMoney("subtotal", subtotal); err != nil {
			return err
		}
		if inv, ok := byID[l.InvoiceID]; ok {
			inv.Lines = append(inv.Lines, l)
		}
	}
	return mapError(rows.Err(), "invoice lines", "batch")
}
