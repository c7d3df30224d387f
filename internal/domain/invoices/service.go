package invoices

import (
	"context"
	"io"
	"strings"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/pets"
	"pet-clinic-ops/internal/platform/logger"
)

// OwnerDirectory resuelve el dueño para estados de cuenta y PDF (lo implementa pets.Service).
type OwnerDirectory interface {
	GetOwner(ctx context.Context, id string) (pets.Owner, error)
}

type Options struct {
	ClinicName string
	Currency   string
	Logger     logger.Logger
}

type Service struct {
	repo   Repository
	owners OwnerDirectory
	opts   Options
	log    logger.Logger
}

func NewService(repo Repository, owners OwnerDirectory, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if strings.TrimSpace(opts.ClinicName) == "" {
		opts.ClinicName = "Pet Clinic"
	}
	return &Service{repo: repo, owners: owners, opts: opts, log: opts.Logger}
}

func (s *Service) GetByID(ctx context.Context, id string) (Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID string) (Invoice, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}

// Statement devuelve las facturas del dueño, la más reciente primero.
func (s *Service) Statement(ctx context.Context, ownerID string, limit int) ([]Invoice, error) {
	if _, err := s.owners.GetOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := s.repo.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, domain.Persistence("list owner invoices", err)
	}
	return items, nil
}

// Delete es administrativo: no revierte el stock consumido y la cita vuelve a quedar sin facturar.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Persistence("delete invoice", err)
	}
	s.log.Warn("invoice deleted", map[string]any{"invoice_id": id, "actor_id": actorID})
	return nil
}

// RenderPDF escribe la factura en PDF.
func (s *Service) RenderPDF(ctx context.Context, id string, w io.Writer) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	owner, err := s.owners.GetOwner(ctx, inv.OwnerID)
	if err != nil {
		return err
	}
	return renderPDF(w, s.opts, inv, owner)
}
