package records_test

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
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/records"
	"pet-clinic-ops/internal/seed"
)

var today = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*app.Services, seed.Result) {
	t.Helper()
	svc, _, res := setupWithRepos(t)
	return svc, res
}

func setupWithRepos(t *testing.T) (*app.Services, app.Repos, seed.Result) {
	t.Helper()
	repos := app.MemoryRepos()
	svc := app.NewServices(repos, app.Options{})
	res, err := seed.Demo(context.Background(), svc, today)
	require.NoError(t, err)
	return svc, repos, res
}

// stockItem da de alta un item con id fijo; el orden de los ids decide el orden de bloqueo.
func stockItem(t *testing.T, repos app.Repos, id string, qty int) {
	t.Helper()
	err := repos.Inventory.Create(context.Background(), inventory.StockItem{
		ID:        id,
		Name:      "Item " + id,
		Category:  "medicine",
		Unit:      "tab",
		UnitPrice: decimal.NewFromInt(10000),
		Quantity:  qty,
		CreatedAt: today,
		UpdatedAt: today,
	})
	require.NoError(t, err)
}

func assertUntouched(t *testing.T, svc *app.Services, apptID string) {
	t.Helper()
	a, err := svc.Appointments.GetByID(context.Background(), apptID)
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusQueued, a.Status)

	_, err = svc.Records.GetByAppointment(context.Background(), apptID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func quantity(t *testing.T, svc *app.Services, itemID string) int {
	t.Helper()
	it, err := svc.Inventory.GetByID(context.Background(), itemID)
	require.NoError(t, err)
	return it.Quantity
}

func TestCommitRecord_DecrementsStockAndCompletes(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	amox := demo.ItemIDs["Amoxicillin 500mg"]
	apptID := demo.AppointmentIDs[0]

	rec, err := svc.Records.CommitRecord(ctx, records.CommitInput{
		AppointmentID: apptID,
		Diagnosis:     "  Upper respiratory infection ",
		Treatment:     "Antibiotics",
		Prescriptions: []records.PrescriptionInput{
			{ItemID: amox, Quantity: 2, Instructions: "1 tab twice a day"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Upper respiratory infection", rec.Diagnosis)
	assert.Equal(t, demo.PetID, rec.PetID)
	require.Len(t, rec.Prescriptions, 1)
	assert.Equal(t, rec.ID, rec.Prescriptions[0].RecordID)

	assert.Equal(t, 48, quantity(t, svc, amox))

	a, err := svc.Appointments.GetByID(ctx, apptID)
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusCompleted, a.Status)

	got, err := svc.Records.GetByAppointment(ctx, apptID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Len(t, got.Prescriptions, 1)
}

func TestCommitRecord_ShortageLeavesNoWrites(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	amox := demo.ItemIDs["Amoxicillin 500mg"]
	flea := demo.ItemIDs["Flea Drops"]
	apptID := demo.AppointmentIDs[0]

	_, err := svc.Records.CommitRecord(ctx, records.CommitInput{
		AppointmentID: apptID,
		Diagnosis:     "Fleas",
		Prescriptions: []records.PrescriptionInput{
			{ItemID: amox, Quantity: 2},
			{ItemID: flea, Quantity: 3},
		},
	})

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, flea, ise.ItemID)
	assert.Equal(t, 2, ise.Available)

	assert.Equal(t, 50, quantity(t, svc, amox))
	assert.Equal(t, 2, quantity(t, svc, flea))

	a, err := svc.Appointments.GetByID(ctx, apptID)
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusQueued, a.Status)

	_, err = svc.Records.GetByAppointment(ctx, apptID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommitRecord_MiddleLineShortRollsBackEarlierLines(t *testing.T) {
	t.Parallel()
	svc, repos, demo := setupWithRepos(t)
	ctx := context.Background()
	stockItem(t, repos, "rx-1", 10)
	stockItem(t, repos, "rx-2", 2)
	stockItem(t, repos, "rx-3", 10)
	apptID := demo.AppointmentIDs[0]

	_, err := svc.Records.CommitRecord(ctx, records.CommitInput{
		AppointmentID: apptID,
		Diagnosis:     "Dermatitis",
		Prescriptions: []records.PrescriptionInput{
			{ItemID: "rx-1", Quantity: 2},
			{ItemID: "rx-2", Quantity: 3},
			{ItemID: "rx-3", Quantity: 1},
		},
	})

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "rx-2", ise.ItemID)
	assert.Equal(t, 2, ise.Available)

	assert.Equal(t, 10, quantity(t, svc, "rx-1"))
	assert.Equal(t, 2, quantity(t, svc, "rx-2"))
	assert.Equal(t, 10, quantity(t, svc, "rx-3"))
	assertUntouched(t, svc, apptID)
}

func TestCommitRecord_ConcurrentAppointmentsShareLowStock(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	dewormer := demo.ItemIDs["Dewormer"]
	require.Equal(t, 3, quantity(t, svc, dewormer))

	const n = 10
	ids := make([]string, n)
	for i := range n {
		a, err := svc.Appointments.Book(ctx, appointments.BookInput{
			PetID:     demo.PetID,
			StaffID:   demo.DoctorID,
			VisitAt:   today.Add(time.Duration(i+1) * 15 * time.Minute),
			Complaint: "Worms",
		})
		require.NoError(t, err)
		ids[i] = a.ID
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Records.CommitRecord(ctx, records.CommitInput{
				AppointmentID: ids[i],
				Diagnosis:     "Intestinal parasites",
				Prescriptions: []records.PrescriptionInput{{ItemID: dewormer, Quantity: 1}},
			})
		}()
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		if err == nil {
			wins++
			a, err := svc.Appointments.GetByID(ctx, ids[i])
			require.NoError(t, err)
			assert.Equal(t, appointments.StatusCompleted, a.Status)
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assertUntouched(t, svc, ids[i])
	}
	assert.Equal(t, 3, wins)
	assert.Equal(t, 0, quantity(t, svc, dewormer))
}

func TestCommitRecord_NotEligible(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()
	apptID := demo.AppointmentIDs[1]

	_, err := svc.Appointments.UpdateQueueStatus(ctx, apptID, appointments.StatusCancelled)
	require.NoError(t, err)

	_, err = svc.Records.CommitRecord(ctx, records.CommitInput{AppointmentID: apptID, Diagnosis: "n/a"})
	require.ErrorIs(t, err, domain.ErrAppointmentNotEligible)

	var sc *domain.StateConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, domain.CodeAppointmentNotEligible, sc.Code())
}

func TestCommitRecord_Validation(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()

	_, err := svc.Records.CommitRecord(ctx, records.CommitInput{AppointmentID: demo.AppointmentIDs[0]})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Records.CommitRecord(ctx, records.CommitInput{
		AppointmentID: demo.AppointmentIDs[0],
		Diagnosis:     "x",
		Prescriptions: []records.PrescriptionInput{{ItemID: demo.ItemIDs["Dewormer"], Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Records.CommitRecord(ctx, records.CommitInput{AppointmentID: "missing", Diagnosis: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommitRecord_ConcurrentOnlyOneWins(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	amox := demo.ItemIDs["Amoxicillin 500mg"]
	apptID := demo.AppointmentIDs[0]

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Records.CommitRecord(context.Background(), records.CommitInput{
				AppointmentID: apptID,
				Diagnosis:     "Cough",
				Prescriptions: []records.PrescriptionInput{{ItemID: amox, Quantity: 2}},
			})
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAppointmentNotEligible)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 48, quantity(t, svc, amox))
}

func TestHistory_NewestFirst(t *testing.T) {
	t.Parallel()
	svc, demo := setup(t)
	ctx := context.Background()

	for _, id := range demo.AppointmentIDs {
		_, err := svc.Records.CommitRecord(ctx, records.CommitInput{AppointmentID: id, Diagnosis: "Checkup " + id})
		require.NoError(t, err)
	}

	items, err := svc.Records.History(ctx, demo.PetID, records.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].CreatedAt.Before(items[1].CreatedAt))

	items, err = svc.Records.History(ctx, demo.PetID, records.HistoryFilter{Query: demo.AppointmentIDs[1]})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.Records.History(ctx, "", records.HistoryFilter{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
