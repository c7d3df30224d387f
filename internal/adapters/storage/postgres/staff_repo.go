package postgres

import (
	"context"

	"pet-clinic-ops/internal/domain/staff"
)

type StaffRepo struct {
	db DB
}

func NewStaffRepo(db DB) *StaffRepo {
	return &StaffRepo{db: db}
}

func (r *StaffRepo) Create(ctx context.Context, m staff.Member) error {
	_, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO staff (id, name, position, specialization, phone, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, m.ID, m.Name, m.Position, m.Specialization, m.Phone, m.CreatedAt)
	return mapError(err, "staff", m.ID)
}

func (r *StaffRepo) GetByID(ctx context.Context, id string) (staff.Member, error) {
	var m staff.Member
	err := QuerierFromCtx(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, position, specialization, phone, created_at
		FROM staff
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Position, &m.Specialization, &m.Phone, &m.CreatedAt)
	if err != nil {
		return staff.Member{}, mapError(err, "staff", id)
	}
	return m, nil
}

func (r *StaffRepo) List(ctx context.Context) ([]staff.Member, error) {
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, `
		SELECT id, name, position, specialization, phone, created_at
		FROM staff
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, mapError(err, "staff", "list")
	}
	defer rows.Close()

	out := make([]staff.Member, 0)
	for rows.Next() {
		var m staff.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Position, &m.Specialization, &m.Phone, &m.CreatedAt); err != nil {
			return nil, mapError(err, "staff", "list")
		}
		out = append(out, m)
	}
	return out, mapError(rows.Err(), "staff", "list")
}
