package memory

import (
	"context"
	"sort"
	"strings"

	"pet-clinic-ops/internal/domain/catalog"
)

type catalogRepo struct {
	s *Store
}

func NewCatalogRepo(s *Store) catalog.Repository {
	return &catalogRepo{s: s}
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// nameTaken: nombre único sin distinguir mayúsculas (excluye el propio id).
func (r *catalogRepo) nameTaken(name, exceptID string) bool {
	n := normName(name)
	for _, svc := range r.s.services {
		if svc.ID != exceptID && normName(svc.Name) == n {
			return true
		}
	}
	return false
}

func (r *catalogRepo) Create(ctx context.Context, svc catalog.ClinicService) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.services[svc.ID]; exists {
		return alreadyExists("service", svc.ID)
	}
	if r.nameTaken(svc.Name, "") {
		return alreadyExists("service", svc.Name)
	}
	r.s.services[svc.ID] = svc
	return nil
}

func (r *catalogRepo) Update(ctx context.Context, svc catalog.ClinicService) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.services[svc.ID]; !exists {
		return notFound("service", svc.ID)
	}
	if r.nameTaken(svc.Name, svc.ID) {
		return alreadyExists("service", svc.Name)
	}
	r.s.services[svc.ID] = svc
	return nil
}

func (r *catalogRepo) GetByID(ctx context.Context, id string) (catalog.ClinicService, error) {
	defer r.s.lock(ctx)()

	svc, ok := r.s.services[id]
	if !ok {
		return catalog.ClinicService{}, notFound("service", id)
	}
	return svc, nil
}

func (r *catalogRepo) FindByName(ctx context.Context, name string) (catalog.ClinicService, error) {
	defer r.s.lock(ctx)()

	n := normName(name)
	for _, svc := range r.s.services {
		if normName(svc.Name) == n {
			return svc, nil
		}
	}
	return catalog.ClinicService{}, notFound("service", name)
}

func (r *catalogRepo) List(ctx context.Context) ([]catalog.ClinicService, error) {
	defer r.s.lock(ctx)()

	out := make([]catalog.ClinicService, 0, len(r.s.services))
	for _, svc := range r.s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
