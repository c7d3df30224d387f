package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/platform/validation"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type Service struct {
	repo Repository
	txm  domain.TxManager
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, txm domain.TxManager, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		txm:  txm,
		log:  log.With(map[string]any{"component": "appointment_queue"}),
		now:  time.Now,
	}
}

type BookInput struct {
	PetID     string `field:"pet_id" validate:"required"`
	StaffID   string `field:"staff_id" validate:"required"`
	ServiceID string `field:"service_id"`
	VisitAt   time.Time
	Complaint string `field:"complaint" validate:"max=2000"`
}

// Book encola una cita nueva en estado queued.
func (s *Service) Book(ctx context.Context, in BookInput) (Appointment, error) {
	in.PetID = strings.TrimSpace(in.PetID)
	in.StaffID = strings.TrimSpace(in.StaffID)
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	if err := validation.Struct(in); err != nil {
		return Appointment{}, err
	}
	if in.VisitAt.IsZero() {
		return Appointment{}, domain.NewValidationError("visit_at", "is required")
	}

	now := s.now()
	a := Appointment{
		ID:        uuid.NewString(),
		PetID:     in.PetID,
		StaffID:   in.StaffID,
		ServiceID: in.ServiceID,
		VisitAt:   in.VisitAt,
		Complaint: strings.TrimSpace(in.Complaint),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, domain.Persistence("book appointment", err)
	}

	s.log.Info("appointment booked", map[string]any{"appointment_id": a.ID, "staff_id": a.StaffID, "visit_at": a.VisitAt})
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListQuery es la forma pública del filtro; View tiene prioridad sobre Statuses.
type ListQuery struct {
	View     View
	Day      *time.Time
	StaffID  string
	PetID    string
	Statuses []Status
	Limit    int
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Appointment, error) {
	f := ListFilter{
		Day:      q.Day,
		StaffID:  strings.TrimSpace(q.StaffID),
		PetID:    strings.TrimSpace(q.PetID),
		Statuses: q.Statuses,
		Limit:    q.Limit,
	}

	switch q.View {
	case ViewAll:
	case ViewActive:
		f.Statuses = []Status{StatusQueued, StatusInProgress}
	case ViewCompletedUnbilled:
		f.Statuses = []Status{StatusCompleted}
		f.Unbilled = true
	default:
		return nil, domain.NewValidationError("view", "must be one of [active completed-unbilled]")
	}

	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		return nil, domain.NewValidationError("limit", "must be at most 500")
	}

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, domain.Persistence("list appointments", err)
	}
	return items, nil
}

// Queue devuelve la cola activa de un día, opcionalmente de un solo profesional.
func (s *Service) Queue(ctx context.Context, day time.Time, staffID string) ([]Appointment, error) {
	return s.List(ctx, ListQuery{View: ViewActive, Day: &day, StaffID: staffID})
}

// UpdateQueueStatus aplica una transición manual (queued, in_progress, cancelled).
// La fila se bloquea mientras se decide la transición.
func (s *Service) UpdateQueueStatus(ctx context.Context, id string, target Status) (Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return Appointment{}, domain.NewValidationError("appointment_id", "is required")
	}
	if target == StatusCompleted {
		return Appointment{}, domain.NewValidationError("status", "completed is set by committing the clinical record")
	}
	if !target.ManuallySettable() {
		return Appointment{}, domain.NewValidationError("status", "must be one of [queued in_progress cancelled]")
	}

	var out Appointment
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !a.Status.CanTransitionTo(target) {
			return domain.NewStateConflict(domain.ErrInvalidTransition, "appointment", a.ID, string(a.Status))
		}
		if a.Status == target {
			out = a
			return nil
		}

		now := s.now()
		if err := s.repo.UpdateStatus(ctx, a.ID, target, now); err != nil {
			return err
		}
		a.Status = target
		a.UpdatedAt = now
		out = a
		return nil
	})
	if err != nil {
		return Appointment{}, domain.Persistence("update queue status", err)
	}

	s.log.Info("queue status updated", map[string]any{"appointment_id": out.ID, "status": out.Status})
	return out, nil
}
