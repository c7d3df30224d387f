package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-clinic-ops/internal/app"
	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/billing"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/invoices"
	"pet-clinic-ops/internal/domain/records"
	"pet-clinic-ops/internal/seed"
)

var today = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func setup(t *testing.T) (*app.Services, seed.Result) {
	t.Helper()
	svc := app.NewServices(app.MemoryRepos(), app.Options{})
	res, err := seed.Demo(context.Background(), svc, today)
	require.NoError(t, err)
	return svc, res
}

// complete registra la ficha de la cita con las recetas dadas (itemID -> cantidad).
func complete(t *testing.T, svc *app.Services, apptID string, rx map[string]int) {
	t.Helper()
	in := records.CommitInput{AppointmentID: apptID, Diagnosis: "Checkup"}
	for id, q := range rx {
		in.Prescriptions = append(in.Prescriptions, records.PrescriptionInput{ItemID: id, Quantity: q})
	}
	_, err := svc.Records.CommitRecord(context.Background(), in)
	require.NoError(t, err)
}

func book(t *testing.T, svc *app.Services, demo seed.Result, serviceID, complaint string) string {
	t.Helper()
	a, err := svc.Appointments.Book(context.Background(), appointments.BookInput{
		PetID:     demo.PetID,
		StaffID:   demo.DoctorID,
		ServiceID: serviceID,
		VisitAt:   today.Add(4 * time.Hour),
		Complaint: complaint,
	})
	require.NoError(t, err)
	return a.ID
}

func TestPreviewBill_ServicePlusPrescriptions(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	amox := demo.ItemIDs["Amoxicillin 500mg"]
	apptID := demo.AppointmentIDs[0]

	complete(t, svc, apptID, map[string]int{amox: 2})

	p, err := svc.Billing.PreviewBill(ctx, apptID)
	require.NoError(t, err)

	assert.Equal(t, billing.SourceDefault, p.ServiceSource)
	require.Len(t, p.Lines, 2)
	assert.Equal(t, invoices.LineService, p.Lines[0].Kind)
	assert.Equal(t, "General Consultation", p.Lines[0].Description)
	assert.Equal(t, invoices.LineItem, p.Lines[1].Kind)
	assert.Equal(t, amox, p.Lines[1].RefID)
	assert.True(t, p.Lines[1].Subtotal.Equal(dec(30000)))
	assert.True(t, p.Subtotal.Equal(dec(180000)), "subtotal %s", p.Subtotal)

	assert.Equal(t, "Budi Santoso", p.Owner.Name)
	assert.Equal(t, "Milo", p.Pet.Name)
	assert.Equal(t, "Dr. Sari", p.Doctor.Name)

	// la preview no escribe nada
	_, err = svc.Invoices.GetByAppointment(ctx, apptID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPreviewBill_NotCompleted(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)

	_, err := svc.Billing.PreviewBill(context.Background(), demo.AppointmentIDs[0])
	assert.ErrorIs(t, err, domain.ErrAppointmentNotCompleted)

	_, err = svc.Billing.PreviewBill(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateBill_ExactlyOnce(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	apptID := demo.AppointmentIDs[0]
	complete(t, svc, apptID, map[string]int{demo.ItemIDs["Amoxicillin 500mg"]: 2})

	inv, err := svc.Billing.GenerateBill(ctx, billing.GenerateInput{AppointmentID: apptID})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(inv.Subtotal))
	assert.True(t, inv.Total.Equal(dec(180000)))
	assert.Equal(t, billing.DefaultPaymentMethod, inv.PaymentMethod)
	assert.Equal(t, demo.OwnerID, inv.OwnerID)
	require.Len(t, inv.Lines, 2)
	for i, l := range inv.Lines {
		assert.Equal(t, i, l.Position)
		assert.Equal(t, inv.ID, l.InvoiceID)
	}

	_, err = svc.Billing.GenerateBill(ctx, billing.GenerateInput{AppointmentID: apptID})
	require.ErrorIs(t, err, domain.ErrAlreadyBilled)

	_, err = svc.Billing.PreviewBill(ctx, apptID)
	require.ErrorIs(t, err, domain.ErrAlreadyBilled)

	// ya facturada deja de aparecer como pendiente
	pending, err := svc.Appointments.List(ctx, appointments.ListQuery{View: appointments.ViewCompletedUnbilled})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGenerateBill_ConcurrentOneInvoice(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	apptID := demo.AppointmentIDs[0]
	complete(t, svc, apptID, nil)

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Billing.GenerateBill(context.Background(), billing.GenerateInput{AppointmentID: apptID})
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyBilled)
	}
	assert.Equal(t, 1, wins)

	list, err := svc.Invoices.Statement(context.Background(), demo.OwnerID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGenerateBill_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	amox := demo.ItemIDs["Amoxicillin 500mg"]
	apptID := demo.AppointmentIDs[0]
	complete(t, svc, apptID, map[string]int{amox: 2})

	inv, err := svc.Billing.GenerateBill(ctx, billing.GenerateInput{AppointmentID: apptID})
	require.NoError(t, err)

	price := dec(99000)
	_, err = svc.Inventory.UpdateDetails(ctx, amox, inventory.UpdateInput{UnitPrice: &price})
	require.NoError(t, err)

	got, err := svc.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.True(t, got.Lines[1].UnitPrice.Equal(dec(15000)))
	assert.True(t, got.Total.Equal(dec(180000)))
}

func TestGenerateBill_DiscountFloorsAtZero(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	complete(t, svc, demo.AppointmentIDs[0], nil)
	complete(t, svc, demo.AppointmentIDs[1], nil)

	inv, err := svc.Billing.GenerateBill(ctx, billing.GenerateInput{
		AppointmentID: demo.AppointmentIDs[0],
		Discount:      dec(50000),
		PaymentMethod: "Transfer",
	})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(dec(100000)))
	assert.Equal(t, "Transfer", inv.PaymentMethod)

	inv, err = svc.Billing.GenerateBill(ctx, billing.GenerateInput{
		AppointmentID: demo.AppointmentIDs[1],
		Discount:      dec(1_000_000),
	})
	require.NoError(t, err)
	assert.True(t, inv.Total.IsZero())
	assert.True(t, inv.Subtotal.Equal(dec(100000)))
}

func TestGenerateBill_Validation(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)

	_, err := svc.Billing.GenerateBill(context.Background(), billing.GenerateInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Billing.GenerateBill(context.Background(), billing.GenerateInput{
		AppointmentID: demo.AppointmentIDs[0],
		Discount:      dec(-1),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateBill_NotCompletedWritesNothing(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)

	_, err := svc.Billing.GenerateBill(context.Background(), billing.GenerateInput{AppointmentID: demo.AppointmentIDs[0]})
	require.ErrorIs(t, err, domain.ErrAppointmentNotCompleted)

	_, err = svc.Invoices.GetByAppointment(context.Background(), demo.AppointmentIDs[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveService(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		serviceID  string
		complaint  string
		wantName   string
		wantSource billing.ServiceSource
	}{
		{"tag", "", "[Grooming] Bath", "Grooming", billing.SourceTag},
		{"tag case-insensitive", "", "[vaccination] yearly", "Vaccination", billing.SourceTag},
		{"explicit wins over tag", demo.ServiceIDs["Vaccination"], "[Grooming] Bath", "Vaccination", billing.SourceExplicit},
		{"unknown tag falls back", "", "[Surgery] stitches", "General Consultation", billing.SourceDefault},
		{"no tag", "", "Limping", "General Consultation", billing.SourceDefault},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := book(t, svc, demo, tc.serviceID, tc.complaint)
			complete(t, svc, id, nil)

			p, err := svc.Billing.PreviewBill(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSource, p.ServiceSource)
			require.Len(t, p.Lines, 1)
			assert.Equal(t, tc.wantName, p.Lines[0].Description)
		})
	}
}
