package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"pet-clinic-ops/internal/domain/appointments"
)

type appointmentRepo struct {
	s *Store
}

func NewAppointmentRepo(s *Store) appointments.Repository {
	return &appointmentRepo{s: s}
}

func (r *appointmentRepo) Create(ctx context.Context, a appointments.Appointment) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.appts[a.ID]; exists {
		return alreadyExists("appointment", a.ID)
	}
	// mismas FKs que en postgres
	if _, ok := r.s.pets[a.PetID]; !ok {
		return notFound("pet", a.PetID)
	}
	if _, ok := r.s.staff[a.StaffID]; !ok {
		return notFound("staff", a.StaffID)
	}
	if a.ServiceID != "" {
		if _, ok := r.s.services[a.ServiceID]; !ok {
			return notFound("service", a.ServiceID)
		}
	}
	r.s.appts[a.ID] = a
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	defer r.s.lock(ctx)()

	a, ok := r.s.appts[id]
	if !ok {
		return appointments.Appointment{}, notFound("appointment", id)
	}
	return a, nil
}

// GetForUpdate: dentro de RunInTx el store entero ya está bloqueado.
func (r *appointmentRepo) GetForUpdate(ctx context.Context, id string) (appointments.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, id string, status appointments.Status, at time.Time) error {
	defer r.s.lock(ctx)()

	a, ok := r.s.appts[id]
	if !ok {
		return notFound("appointment", id)
	}
	a.Status = status
	a.UpdatedAt = at
	r.s.appts[id] = a
	return nil
}

func (r *appointmentRepo) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	defer r.s.lock(ctx)()

	var from, to time.Time
	if f.Day != nil {
		d := *f.Day
		from = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		to = from.AddDate(0, 0, 1)
	}

	billed := make(map[string]struct{}, len(r.s.invoices))
	if f.Unbilled {
		for _, inv := range r.s.invoices {
			billed[inv.AppointmentID] = struct{}{}
		}
	}

	out := make([]appointments.Appointment, 0)
	for _, a := range r.s.appts {
		if f.Day != nil && (a.VisitAt.Before(from) || !a.VisitAt.Before(to)) {
			continue
		}
		if f.StaffID != "" && a.StaffID != f.StaffID {
			continue
		}
		if f.PetID != "" && a.PetID != f.PetID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status) {
			continue
		}
		if _, ok := billed[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitAt.Equal(out[j].VisitAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].VisitAt.Before(out[j].VisitAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
