package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/catalog"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/invoices"
	"pet-clinic-ops/internal/domain/pets"
	"pet-clinic-ops/internal/domain/records"
	"pet-clinic-ops/internal/domain/staff"
	"pet-clinic-ops/internal/platform/logger"
)

const (
	DefaultServiceName   = "General Consultation"
	DefaultPaymentMethod = "Cash"
)

// PetDirectory resuelve mascota y dueño (lo implementa pets.Service).
type PetDirectory interface {
	ContactOf(ctx context.Context, petID string) (pets.Pet, pets.Owner, error)
}

type Deps struct {
	Tx           domain.TxManager
	Appointments appointments.Repository
	Records      records.Repository
	Items        inventory.Repository
	Catalog      catalog.Repository
	Invoices     invoices.Repository
	Staff        staff.Repository
	Pets         PetDirectory
}

type Options struct {
	DefaultServiceName   string
	DefaultPaymentMethod string
	Logger               logger.Logger
}

// ServiceSource indica de dónde salió la línea de servicio.
type ServiceSource string

const (
	SourceExplicit ServiceSource = "explicit"
	SourceTag      ServiceSource = "tag"
	SourceDefault  ServiceSource = "default"
)

// BillPreview es el borrador de la factura con precios actuales. No escribe nada.
type BillPreview struct {
	AppointmentID string
	VisitAt       time.Time
	Complaint     string
	Status        appointments.Status

	Owner  pets.Owner
	Pet    pets.Pet
	Doctor staff.Member

	ServiceSource ServiceSource
	Lines         []invoices.Line
	Subtotal      decimal.Decimal
}

type Service struct {
	d    Deps
	opts Options
	log  logger.Logger
	now  func() time.Time
}

func NewService(d Deps, opts Options) *Service {
	if strings.TrimSpace(opts.DefaultServiceName) == "" {
		opts.DefaultServiceName = DefaultServiceName
	}
	if strings.TrimSpace(opts.DefaultPaymentMethod) == "" {
		opts.DefaultPaymentMethod = DefaultPaymentMethod
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{
		d:    d,
		opts: opts,
		log:  opts.Logger.With(map[string]any{"component": "billing"}),
		now:  time.Now,
	}
}

// PreviewBill arma el borrador de una cita completed sin factura.
func (s *Service) PreviewBill(ctx context.Context, appointmentID string) (BillPreview, error) {
	if strings.TrimSpace(appointmentID) == "" {
		return BillPreview{}, domain.NewValidationError("appointment_id", "is required")
	}

	appt, err := s.d.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return BillPreview{}, domain.Persistence("preview bill", err)
	}
	if err := s.checkBillable(ctx, appt); err != nil {
		return BillPreview{}, domain.Persistence("preview bill", err)
	}

	lines, subtotal, source, err := s.deriveLines(ctx, appt)
	if err != nil {
		return BillPreview{}, domain.Persistence("preview bill", err)
	}

	pet, owner, err := s.d.Pets.ContactOf(ctx, appt.PetID)
	if err != nil {
		return BillPreview{}, domain.Persistence("preview bill", err)
	}
	doctor, err := s.d.Staff.GetByID(ctx, appt.StaffID)
	if err != nil {
		return BillPreview{}, domain.Persistence("preview bill", err)
	}

	return BillPreview{
		AppointmentID: appt.ID,
		VisitAt:       appt.VisitAt,
		Complaint:     appt.Complaint,
		Status:        appt.Status,
		Owner:         owner,
		Pet:           pet,
		Doctor:        doctor,
		ServiceSource: source,
		Lines:         lines,
		Subtotal:      subtotal,
	}, nil
}

type GenerateInput struct {
	AppointmentID string
	PaymentMethod string
	Discount      decimal.Decimal
}

// GenerateBill emite la factura de una cita una sola vez.
// Con la fila de la cita bloqueada re-verifica factura y estado, toma la foto de precios e inserta.
// total = max(0, subtotal - descuento).
func (s *Service) GenerateBill(ctx context.Context, in GenerateInput) (invoices.Invoice, error) {
	in.AppointmentID = strings.TrimSpace(in.AppointmentID)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)

	var fieldErrs []domain.FieldError
	if in.AppointmentID == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "appointment_id", Message: "is required"})
	}
	if in.Discount.IsNegative() {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "discount", Message: "must be at least 0"})
	}
	if len(in.PaymentMethod) > 40 {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "payment_method", Message: "must be at most 40 characters"})
	}
	if len(fieldErrs) > 0 {
		return invoices.Invoice{}, domain.NewValidationErrors(fieldErrs)
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = s.opts.DefaultPaymentMethod
	}

	ctx = context.WithoutCancel(ctx)

	var out invoices.Invoice
	err := s.d.Tx.RunInTx(ctx, func(ctx context.Context) error {
		appt, err := s.d.Appointments.GetForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if err := s.checkBillable(ctx, appt); err != nil {
			return err
		}

		lines, subtotal, _, err := s.deriveLines(ctx, appt)
		if err != nil {
			return err
		}
		_, owner, err := s.d.Pets.ContactOf(ctx, appt.PetID)
		if err != nil {
			return err
		}

		total := subtotal.Sub(in.Discount)
		if total.IsNegative() {
			total = decimal.Zero
		}

		inv := invoices.Invoice{
			ID:            uuid.NewString(),
			AppointmentID: appt.ID,
			OwnerID:       owner.ID,
			Subtotal:      subtotal,
			Discount:      in.Discount,
			Total:         total,
			PaymentMethod: in.PaymentMethod,
			CreatedAt:     s.now(),
			Lines:         lines,
		}
		for i := range inv.Lines {
			inv.Lines[i].ID = uuid.NewString()
			inv.Lines[i].InvoiceID = inv.ID
		}

		if err := s.d.Invoices.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.NewStateConflict(domain.ErrAlreadyBilled, "appointment", appt.ID, string(appt.Status))
			}
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		s.log.Warn("bill refused", map[string]any{"appointment_id": in.AppointmentID, "error": err})
		return invoices.Invoice{}, domain.Persistence("generate bill", err)
	}

	s.log.Info("invoice generated", map[string]any{
		"invoice_id":     out.ID,
		"appointment_id": out.AppointmentID,
		"total":          out.Total.String(),
	})
	return out, nil
}

// checkBillable: primero "ya facturada", después "no completada".
func (s *Service) checkBillable(ctx context.Context, appt appointments.Appointment) error {
	exists, err := s.d.Invoices.ExistsForAppointment(ctx, appt.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.NewStateConflict(domain.ErrAlreadyBilled, "appointment", appt.ID, string(appt.Status))
	}
	if appt.Status != appointments.StatusCompleted {
		return domain.NewStateConflict(domain.ErrAppointmentNotCompleted, "appointment", appt.ID, string(appt.Status))
	}
	return nil
}

// deriveLines arma una línea de servicio y una por receta, con los precios vigentes.
func (s *Service) deriveLines(ctx context.Context, appt appointments.Appointment) ([]invoices.Line, decimal.Decimal, ServiceSource, error) {
	svc, source, err := s.resolveService(ctx, appt)
	if err != nil {
		return nil, decimal.Zero, "", err
	}

	lines := []invoices.Line{{
		Kind:        invoices.LineService,
		RefID:       svc.ID,
		Description: svc.Name,
		UnitPrice:   svc.BasePrice,
		Quantity:    1,
		Subtotal:    svc.BasePrice,
		Position:    0,
	}}

	rec, err := s.d.Records.GetByAppointment(ctx, appt.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// completed sin ficha (datos importados): solo el servicio
	case err != nil:
		return nil, decimal.Zero, "", err
	default:
		for _, p := range rec.Prescriptions {
			it, err := s.d.Items.GetByID(ctx, p.ItemID)
			if err != nil {
				return nil, decimal.Zero, "", fmt.Errorf("prescribed item %s: %w", p.ItemID, err)
			}
			lines = append(lines, invoices.Line{
				Kind:        invoices.LineItem,
				RefID:       it.ID,
				Description: it.Name,
				Unit:        it.Unit,
				UnitPrice:   it.UnitPrice,
				Quantity:    p.Quantity,
				Subtotal:    it.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))),
				Position:    len(lines),
			})
		}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	return lines, subtotal, source, nil
}

// resolveService: servicio explícito de la cita, si no el tag "[Nombre]" de la queja, si no el default.
func (s *Service) resolveService(ctx context.Context, appt appointments.Appointment) (catalog.ClinicService, ServiceSource, error) {
	if appt.ServiceID != "" {
		svc, err := s.d.Catalog.GetByID(ctx, appt.ServiceID)
		if err == nil {
			return svc, SourceExplicit, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return catalog.ClinicService{}, "", err
		}
	}

	if tag, ok := ParseServiceTag(appt.Complaint); ok {
		svc, err := s.d.Catalog.FindByName(ctx, tag)
		if err == nil {
			return svc, SourceTag, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return catalog.ClinicService{}, "", err
		}
		s.log.Warn("unknown service tag, using default", map[string]any{"appointment_id": appt.ID, "tag": tag})
	}

	svc, err := s.d.Catalog.FindByName(ctx, s.opts.DefaultServiceName)
	if err != nil {
		return catalog.ClinicService{}, "", fmt.Errorf("default service %q: %w", s.opts.DefaultServiceName, err)
	}
	return svc, SourceDefault, nil
}
