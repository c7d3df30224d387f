package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/platform/validation"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	Name        string `field:"name" validate:"required,max=120"`
	Description string `field:"description"`
	BasePrice   decimal.Decimal
}

func (s *Service) Create(ctx context.Context, in CreateInput) (ClinicService, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return ClinicService{}, err
	}
	if in.BasePrice.IsNegative() {
		return ClinicService{}, domain.NewValidationError("base_price", "must be at least 0")
	}

	now := s.now()
	cs := ClinicService{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		BasePrice:   in.BasePrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, cs); err != nil {
		return ClinicService{}, domain.Persistence("create clinic service", err)
	}
	return cs, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (ClinicService, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) FindByName(ctx context.Context, name string) (ClinicService, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *Service) List(ctx context.Context) ([]ClinicService, error) {
	return s.repo.List(ctx)
}

// UpdateInput: nil = no tocar. Cambiar el precio no afecta facturas ya emitidas.
type UpdateInput struct {
	Name        *string
	Description *string
	BasePrice   *decimal.Decimal
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (ClinicService, error) {
	cs, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ClinicService{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return ClinicService{}, domain.NewValidationError("name", "is required")
		}
		cs.Name = name
	}
	if in.Description != nil {
		cs.Description = strings.TrimSpace(*in.Description)
	}
	if in.BasePrice != nil {
		if in.BasePrice.IsNegative() {
			return ClinicService{}, domain.NewValidationError("base_price", "must be at least 0")
		}
		cs.BasePrice = *in.BasePrice
	}

	cs.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, cs); err != nil {
		return ClinicService{}, domain.Persistence("update clinic service", err)
	}
	return cs, nil
}
