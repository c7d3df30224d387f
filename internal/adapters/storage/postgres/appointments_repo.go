package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"pet-clinic-ops/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db DB
}

func NewAppointmentsRepo(db DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

var appointmentColumns = []string{
	"a.id", "a.pet_id", "a.staff_id", "COALESCE(a.service_id, '')",
	"a.visit_at", "a.complaint", "a.status", "a.created_at", "a.updated_at",
}

func scanAppointment(row interface{ Scan(dest ...any) error }) (appointments.Appointment, error) {
	var a appointments.Appointment
	err := row.Scan(&a.ID, &a.PetID, &a.StaffID, &a.ServiceID, &a.VisitAt, &a.Complaint, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create: las FKs de pet, staff y service devuelven ErrNotFound vía mapError.
func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO appointments (id, pet_id, staff_id, service_id, visit_at, complaint, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, a.ID, a.PetID, a.StaffID, nullIfEmpty(a.ServiceID), a.VisitAt, a.Complaint, a.Status, a.CreatedAt, a.UpdatedAt)
	return mapError(err, "appointment", a.ID)
}

func (r *AppointmentsRepo) get(ctx context.Context, id string, forUpdate bool) (appointments.Appointment, error) {
	b := psql.Select(appointmentColumns...).From("appointments a").Where(sq.Eq{"a.id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return appointments.Appointment{}, err
	}
	a, err := scanAppointment(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return appointments.Appointment{}, mapError(err, "appointment", id)
	}
	return a, nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	return r.get(ctx, id, false)
}

func (r *AppointmentsRepo) GetForUpdate(ctx context.Context, id string) (appointments.Appointment, error) {
	return r.get(ctx, id, true)
}

func (r *AppointmentsRepo) UpdateStatus(ctx context.Context, id string, status appointments.Status, at time.Time) error {
	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, at)
	if err != nil {
		return mapError(err, "appointment", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("appointment", id)
	}
	return nil
}

func (r *AppointmentsRepo) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	b := psql.Select(appointmentColumns...).From("appointments a").OrderBy("a.visit_at ASC", "a.created_at ASC")

	if f.Day != nil {
		d := *f.Day
		from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		b = b.Where(sq.GtOrEq{"a.visit_at": from}).Where(sq.Lt{"a.visit_at": from.AddDate(0, 0, 1)})
	}
	if f.StaffID != "" {
		b = b.Where(sq.Eq{"a.staff_id": f.StaffID})
	}
	if f.PetID != "" {
		b = b.Where(sq.Eq{"a.pet_id": f.PetID})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		b = b.Where(sq.Eq{"a.status": statuses})
	}
	if f.Unbilled {
		b = b.Where("NOT EXISTS (SELECT 1 FROM invoices i WHERE i.appointment_id = a.id)")
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "appointments", "list")
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, mapError(err, "appointments", "list")
		}
		out = append(out, a)
	}
	return out, mapError(rows.Err(), "appointments", "list")
}
