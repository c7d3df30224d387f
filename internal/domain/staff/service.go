package staff

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
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	Name           string `field:"name" validate:"required,max=120"`
	Position       string `field:"position" validate:"required,oneof=doctor groomer receptionist admin"`
	Specialization string `field:"specialization"`
	Phone          string `field:"phone" validate:"max=40"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Member, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.ToLower(strings.TrimSpace(in.Position))
	if err := validation.Struct(in); err != nil {
		return Member{}, err
	}

	m := Member{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Position:       Position(in.Position),
		Specialization: strings.TrimSpace(in.Specialization),
		Phone:          strings.TrimSpace(in.Phone),
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Member{}, domain.Persistence("create staff member", err)
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}
