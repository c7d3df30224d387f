package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/platform/validation"
)

// StockLedger es lo que la ficha necesita del inventario.
type StockLedger interface {
	ConsumeBatch(ctx context.Context, lines []inventory.Consumption) ([]inventory.StockItem, error)
}

type Service struct {
	repo   Repository
	appts  appointments.Repository
	ledger StockLedger
	txm    domain.TxManager
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, appts appointments.Repository, ledger StockLedger, txm domain.TxManager, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		appts:  appts,
		ledger: ledger,
		txm:    txm,
		log:    log.With(map[string]any{"component": "clinical_records"}),
		now:    time.Now,
	}
}

type PrescriptionInput struct {
	ItemID       string `field:"item_id" validate:"required"`
	Quantity     int    `field:"quantity" validate:"gt=0"`
	Instructions string `field:"instructions" validate:"max=500"`
}

type CommitInput struct {
	AppointmentID string              `field:"appointment_id" validate:"required"`
	Diagnosis     string              `field:"diagnosis" validate:"required,max=4000"`
	Treatment     string              `field:"treatment" validate:"max=4000"`
	Notes         string              `field:"notes" validate:"max=4000"`
	Prescriptions []PrescriptionInput `field:"prescriptions" validate:"dive"`
}

// CommitRecord registra la ficha clínica de una cita en una sola transacción:
// inserta la ficha, descuenta el stock recetado, inserta las recetas y marca la cita como completed.
// Si algo falla no queda nada escrito.
func (s *Service) CommitRecord(ctx context.Context, in CommitInput) (ClinicalRecord, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return ClinicalRecord{}, err
	}

	// Una vez validado, la unidad de trabajo no se corta por cancelación del cliente.
	ctx = context.WithoutCancel(ctx)

	var out ClinicalRecord
	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		appt, err := s.appts.GetForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if !appt.Status.AcceptsClinicalRecord() {
			return domain.NewStateConflict(domain.ErrAppointmentNotEligible, "appointment", appt.ID, string(appt.Status))
		}

		now := s.now()
		rec := ClinicalRecord{
			ID:            uuid.NewString(),
			AppointmentID: appt.ID,
			PetID:         appt.PetID,
			Diagnosis:     in.Diagnosis,
			Treatment:     in.Treatment,
			Notes:         in.Notes,
			CreatedAt:     now,
		}

		// 1) ficha
		if err := s.repo.Create(ctx, rec); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.NewStateConflict(domain.ErrAppointmentNotEligible, "appointment", appt.ID, string(appt.Status))
			}
			return err
		}

		// 2) stock
		consumptions := make([]inventory.Consumption, 0, len(in.Prescriptions))
		for _, p := range in.Prescriptions {
			consumptions = append(consumptions, inventory.Consumption{ItemID: p.ItemID, Quantity: p.Quantity})
		}
		if _, err := s.ledger.ConsumeBatch(ctx, consumptions); err != nil {
			return err
		}

		// 3) recetas
		lines := make([]PrescriptionLine, 0, len(in.Prescriptions))
		for i, p := range in.Prescriptions {
			lines = append(lines, PrescriptionLine{
				ID:           uuid.NewString(),
				RecordID:     rec.ID,
				ItemID:       p.ItemID,
				Quantity:     p.Quantity,
				Instructions: p.Instructions,
				Position:     i,
			})
		}
		if len(lines) > 0 {
			if err := s.repo.AddPrescriptions(ctx, rec.ID, lines); err != nil {
				return err
			}
		}

		// 4) la cita queda completed
		if err := s.appts.UpdateStatus(ctx, appt.ID, appointments.StatusCompleted, now); err != nil {
			return err
		}

		rec.Prescriptions = lines
		out = rec
		return nil
	})
	if err != nil {
		s.log.Warn("clinical record refused", map[string]any{"appointment_id": in.AppointmentID, "error": err})
		return ClinicalRecord{}, domain.Persistence("commit clinical record", err)
	}

	s.log.Info("clinical record committed", map[string]any{
		"record_id":      out.ID,
		"appointment_id": out.AppointmentID,
		"lines":          len(out.Prescriptions),
	})
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (ClinicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID string) (ClinicalRecord, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}

// History devuelve el historial clínico de una mascota.
func (s *Service) History(ctx context.Context, petID string, f HistoryFilter) ([]ClinicalRecord, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, domain.NewValidationError("pet_id", "is required")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	items, err := s.repo.ListByPet(ctx, petID, f)
	if err != nil {
		return nil, domain.Persistence("list clinical history", err)
	}
	return items, nil
}

func normalize(in CommitInput) CommitInput {
	in.AppointmentID = strings.TrimSpace(in.AppointmentID)
	in.Diagnosis = strings.TrimSpace(in.Diagnosis)
	in.Treatment = strings.TrimSpace(in.Treatment)
	in.Notes = strings.TrimSpace(in.Notes)

	lines := make([]PrescriptionInput, len(in.Prescriptions))
	for i, p := range in.Prescriptions {
		lines[i] = PrescriptionInput{
			ItemID:       strings.TrimSpace(p.ItemID),
			Quantity:     p.Quantity,
			Instructions: strings.TrimSpace(p.Instructions),
		}
	}
	in.Prescriptions = lines
	return in
}
