package memory

import (
	"context"
	"sort"

	"pet-clinic-ops/internal/domain/staff"
)

type staffRepo struct {
	s *Store
}

func NewStaffRepo(s *Store) staff.Repository {
	return &staffRepo{s: s}
}

func (r *staffRepo) Create(ctx context.Context, m staff.Member) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.staff[m.ID]; exists {
		return alreadyExists("staff", m.ID)
	}
	r.s.staff[m.ID] = m
	return nil
}

func (r *staffRepo) GetByID(ctx context.Context, id string) (staff.Member, error) {
	defer r.s.lock(ctx)()

	m, ok := r.s.staff[id]
	if !ok {
		return staff.Member{}, notFound("staff", id)
	}
	return m, nil
}

func (r *staffRepo) List(ctx context.Context) ([]staff.Member, error) {
	defer r.s.lock(ctx)()

	out := make([]staff.Member, 0, len(r.s.staff))
	for _, m := range r.s.staff {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
