package memory

import (
	"context"
	"slices"
	"sort"

	"pet-clinic-ops/internal/domain/invoices"
)

type invoiceRepo struct {
	s *Store
}

func NewInvoiceRepo(s *Store) invoices.Repository {
	return &invoiceRepo{s: s}
}

func (r *invoiceRepo) Create(ctx context.Context, inv invoices.Invoice) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.invoices[inv.ID]; exists {
		return alreadyExists("invoice", inv.ID)
	}
	// UNIQUE(appointment_id)
	for _, cur := range r.s.invoices {
		if cur.AppointmentID == inv.AppointmentID {
			return alreadyExists("invoice for appointment", inv.AppointmentID)
		}
	}
	if _, ok := r.s.appts[inv.AppointmentID]; !ok {
		return notFound("appointment", inv.AppointmentID)
	}
	if _, ok := r.s.owners[inv.OwnerID]; !ok {
		return notFound("owner", inv.OwnerID)
	}
	inv.Lines = slices.Clone(inv.Lines)
	r.s.invoices[inv.ID] = inv
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id string) (invoices.Invoice, error) {
	defer r.s.lock(ctx)()

	inv, ok := r.s.invoices[id]
	if !ok {
		return invoices.Invoice{}, notFound("invoice", id)
	}
	return copyInvoice(inv), nil
}

func (r *invoiceRepo) GetByAppointment(ctx context.Context, appointmentID string) (invoices.Invoice, error) {
	defer r.s.lock(ctx)()

	for _, inv := range r.s.invoices {
		if inv.AppointmentID == appointmentID {
			return copyInvoice(inv), nil
		}
	}
	return invoices.Invoice{}, notFound("invoice for appointment", appointmentID)
}

func (r *invoiceRepo) ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	defer r.s.lock(ctx)()

	for _, inv := range r.s.invoices {
		if inv.AppointmentID == appointmentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *invoiceRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]invoices.Invoice, error) {
	defer r.s.lock(ctx)()

	out := make([]invoices.Invoice, 0)
	for _, inv := range r.s.invoices {
		if inv.OwnerID == ownerID {
			out = append(out, copyInvoice(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.invoices[id]; !ok {
		return notFound("invoice", id)
	}
	delete(r.s.invoices, id)
	return nil
}

func copyInvoice(inv invoices.Invoice) invoices.Invoice {
	inv.Lines = slices.Clone(inv.Lines)
	if inv.Lines == nil {
		inv.Lines = []invoices.Line{}
	}
	return inv
}
