package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/platform/validation"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateOwnerInput struct {
	Name    string `field:"name" validate:"required,max=120"`
	Phone   string `field:"phone" validate:"max=40"`
	Email   string `field:"email" validate:"omitempty,email"`
	Address string `field:"address"`
}

func (s *Service) CreateOwner(ctx context.Context, in CreateOwnerInput) (Owner, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return Owner{}, err
	}

	o := Owner{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     in.Email,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateOwner(ctx, o); err != nil {
		return Owner{}, domain.Persistence("create owner", err)
	}
	return o, nil
}

func (s *Service) GetOwner(ctx context.Context, id string) (Owner, error) {
	return s.repo.GetOwner(ctx, id)
}

type CreateInput struct {
	OwnerID   string `field:"owner_id" validate:"required"`
	Name      string `field:"name" validate:"required,max=80"`
	Species   string `field:"species" validate:"required,oneof=dog cat other"`
	Breed     string `field:"breed"`
	Sex       string `field:"sex" validate:"omitempty,oneof=male female unknown"`
	BirthDate *time.Time
	Notes     string `field:"notes"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.ToLower(strings.TrimSpace(in.Species))
	in.Sex = strings.ToLower(strings.TrimSpace(in.Sex))
	if err := validation.Struct(in); err != nil {
		return Pet{}, err
	}
	if in.Sex == "" {
		in.Sex = string(SexUnknown)
	}

	// El dueño tiene que existir (en Postgres también lo garantiza la FK).
	if _, err := s.repo.GetOwner(ctx, in.OwnerID); err != nil {
		return Pet{}, err
	}

	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   in.OwnerID,
		Name:      in.Name,
		Species:   Species(in.Species),
		Breed:     strings.TrimSpace(in.Breed),
		Sex:       Sex(in.Sex),
		BirthDate: in.BirthDate,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, domain.Persistence("create pet", err)
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	if _, err := s.repo.GetOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdateInput usa punteros: nil = no tocar.
type UpdateInput struct {
	Name    *string
	Species *string
	Breed   *string
	Sex     *string
	Notes   *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, domain.NewValidationError("name", "is required")
		}
		p.Name = name
	}
	if in.Species != nil {
		sp := Species(strings.ToLower(strings.TrimSpace(*in.Species)))
		if !sp.Valid() {
			return Pet{}, domain.NewValidationError("species", "must be one of [dog cat other]")
		}
		p.Species = sp
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sx := Sex(strings.ToLower(strings.TrimSpace(*in.Sex)))
		if sx != SexMale && sx != SexFemale && sx != SexUnknown {
			return Pet{}, domain.NewValidationError("sex", "must be one of [male female unknown]")
		}
		p.Sex = sx
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, domain.Persistence("update pet", err)
	}
	return p, nil
}
