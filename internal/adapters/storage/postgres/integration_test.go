//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-clinic-ops/internal/adapters/storage/postgres/testhelper"
	"pet-clinic-ops/internal/app"
	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/billing"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/records"
	"pet-clinic-ops/internal/seed"
)

func freshServices(t *testing.T) (*app.Services, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)

	_, err := pool.Exec(context.Background(), `
		TRUNCATE invoice_lines, invoices, prescription_lines, clinical_records,
		         appointments, stock_items, clinic_services, staff, pets, owners CASCADE`)
	require.NoError(t, err)

	return app.NewServices(app.PostgresRepos(pool), app.Options{}), pool
}

func TestPostgres_RecordThenBill(t *testing.T) {
	svc, _ := freshServices(t)
	ctx := context.Background()

	demo, err := seed.Demo(ctx, svc, time.Now().UTC())
	require.NoError(t, err)
	require.False(t, demo.Skipped)

	amox := demo.ItemIDs["Amoxicillin 500mg"]
	flea := demo.ItemIDs["Flea Drops"]
	apptID := demo.AppointmentIDs[0]

	// faltante en la segunda línea: nada queda escrito
	_, err = svc.Records.CommitRecord(ctx, records.CommitInput{
		AppointmentID: apptID,
		Diagnosis:     "Cough",
		Prescriptions: []records.PrescriptionInput{
			{ItemID: amox, Quantity: 2},
			{ItemID: flea, Quantity: 3},
		},
	})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.Available)

	it, err := svc.Inventory.GetByID(ctx, amox)
	require.NoError(t, err)
	assert.Equal(t, 50, it.Quantity)

	// ficha válida
	rec, err := svc.Records.CommitRecord(ctx, records.CommitInput{
		AppointmentID: apptID,
		Diagnosis:     "Cough",
		Prescriptions: []records.PrescriptionInput{{ItemID: amox, Quantity: 2, Instructions: "twice a day"}},
	})
	require.NoError(t, err)
	require.Len(t, rec.Prescriptions, 1)

	it, err = svc.Inventory.GetByID(ctx, amox)
	require.NoError(t, err)
	assert.Equal(t, 48, it.Quantity)

	a, err := svc.Appointments.GetByID(ctx, apptID)
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusCompleted, a.Status)

	// preview y factura
	want := decimal.NewFromInt(180000)
	p, err := svc.Billing.PreviewBill(ctx, apptID)
	require.NoError(t, err)
	assert.True(t, p.Subtotal.Equal(want), "subtotal %s", p.Subtotal)

	inv, err := svc.Billing.GenerateBill(ctx, billing.GenerateInput{AppointmentID: apptID})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(want))

	price := decimal.NewFromInt(99000)
	_, err = svc.Inventory.UpdateDetails(ctx, amox, inventory.UpdateInput{UnitPrice: &price})
	require.NoError(t, err)

	got, err := svc.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.True(t, got.Lines[1].UnitPrice.Equal(decimal.NewFromInt(15000)))

	_, err = svc.Billing.GenerateBill(ctx, billing.GenerateInput{AppointmentID: apptID})
	assert.ErrorIs(t, err, domain.ErrAlreadyBilled)

	// con recetas o facturas que lo referencian, el item no se borra
	err = svc.Inventory.Delete(ctx, amox)
	assert.ErrorIs(t, err, domain.ErrItemInUse)
}

func TestPostgres_ConcurrentDecrementNeverNegative(t *testing.T) {
	svc, _ := freshServices(t)
	ctx := context.Background()

	it, err := svc.Inventory.Create(ctx, inventory.CreateInput{
		Name:      "Amoxicillin 500mg",
		Unit:      "tab",
		UnitPrice: decimal.NewFromInt(15000),
		Quantity:  10,
	})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Inventory.ReserveAndDecrement(ctx, it.ID, 1)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, wins)
	got, err := svc.Inventory.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}
