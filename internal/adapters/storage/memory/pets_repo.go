package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-clinic-ops/internal/domain/pets"
)

type petRepo struct {
	s *Store
}

func NewPetRepo(s *Store) pets.Repository {
	return &petRepo{s: s}
}

func (r *petRepo) CreateOwner(ctx context.Context, o pets.Owner) error {
	defer r.s.lock(ctx)()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.s.owners[o.ID]; exists {
		return alreadyExists("owner", o.ID)
	}
	r.s.owners[o.ID] = o
	return nil
}

func (r *petRepo) GetOwner(ctx context.Context, id string) (pets.Owner, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.owners[id]
	if !ok {
		return pets.Owner{}, notFound("owner", id)
	}
	return o, nil
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	defer r.s.lock(ctx)()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.s.pets[p.ID]; exists {
		return alreadyExists("pet", p.ID)
	}
	if _, ok := r.s.owners[p.OwnerID]; !ok {
		return notFound("owner", p.OwnerID)
	}
	r.s.pets[p.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.pets[p.ID]; !exists {
		return notFound("pet", p.ID)
	}
	r.s.pets[p.ID] = p
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, notFound("pet", id)
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	defer r.s.lock(ctx)()

	out := make([]pets.Pet, 0)
	for _, p := range r.s.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}

	// orden estable por created_at asc
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
