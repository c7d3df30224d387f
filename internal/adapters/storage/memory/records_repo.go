package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"pet-clinic-ops/internal/domain/records"
)

type recordRepo struct {
	s *Store
}

func NewRecordRepo(s *Store) records.Repository {
	return &recordRepo{s: s}
}

func (r *recordRepo) Create(ctx context.Context, rec records.ClinicalRecord) error {
	defer r.s.lock(ctx)()

	if _, exists := r.s.records[rec.ID]; exists {
		return alreadyExists("clinical record", rec.ID)
	}
	// UNIQUE(appointment_id)
	for _, cur := range r.s.records {
		if cur.AppointmentID == rec.AppointmentID {
			return alreadyExists("clinical record for appointment", rec.AppointmentID)
		}
	}
	if _, ok := r.s.appts[rec.AppointmentID]; !ok {
		return notFound("appointment", rec.AppointmentID)
	}
	rec.Prescriptions = nil
	r.s.records[rec.ID] = rec
	return nil
}

func (r *recordRepo) AddPrescriptions(ctx context.Context, recordID string, lines []records.PrescriptionLine) error {
	defer r.s.lock(ctx)()

	rec, ok := r.s.records[recordID]
	if !ok {
		return notFound("clinical record", recordID)
	}
	for _, l := range lines {
		if _, ok := r.s.items[l.ItemID]; !ok {
			return notFound("stock item", l.ItemID)
		}
	}
	// slice nuevo: la foto de RunInTx comparte el anterior
	merged := make([]records.PrescriptionLine, 0, len(rec.Prescriptions)+len(lines))
	merged = append(merged, rec.Prescriptions...)
	merged = append(merged, lines...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Position < merged[j].Position })
	rec.Prescriptions = merged
	r.s.records[recordID] = rec
	return nil
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (records.ClinicalRecord, error) {
	defer r.s.lock(ctx)()

	rec, ok := r.s.records[id]
	if !ok {
		return records.ClinicalRecord{}, notFound("clinical record", id)
	}
	return copyRecord(rec), nil
}

func (r *recordRepo) GetByAppointment(ctx context.Context, appointmentID string) (records.ClinicalRecord, error) {
	defer r.s.lock(ctx)()

	for _, rec := range r.s.records {
		if rec.AppointmentID == appointmentID {
			return copyRecord(rec), nil
		}
	}
	return records.ClinicalRecord{}, notFound("clinical record for appointment", appointmentID)
}

func (r *recordRepo) ListByPet(ctx context.Context, petID string, f records.HistoryFilter) ([]records.ClinicalRecord, error) {
	defer r.s.lock(ctx)()

	q := strings.ToLower(f.Query)
	out := make([]records.ClinicalRecord, 0)
	for _, rec := range r.s.records {
		if rec.PetID != petID {
			continue
		}
		if f.From != nil && rec.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && rec.CreatedAt.After(*f.To) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(rec.Diagnosis+" "+rec.Treatment+" "+rec.Notes), q) {
			continue
		}
		out = append(out, copyRecord(rec))
	}

	// más reciente primero
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func copyRecord(rec records.ClinicalRecord) records.ClinicalRecord {
	rec.Prescriptions = slices.Clone(rec.Prescriptions)
	if rec.Prescriptions == nil {
		rec.Prescriptions = []records.PrescriptionLine{}
	}
	return rec
}
