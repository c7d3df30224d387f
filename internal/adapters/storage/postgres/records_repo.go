package postgres

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"pet-clinic-ops/internal/domain/records"
)

type RecordsRepo struct {
	db DB
}

func NewRecordsRepo(db DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

var recordColumns = []string{"id", "appointment_id", "pet_id", "diagnosis", "treatment", "notes", "created_at"}

func scanRecord(row interface{ Scan(dest ...any) error }) (records.ClinicalRecord, error) {
	var rec records.ClinicalRecord
	err := row.Scan(&rec.ID, &rec.AppointmentID, &rec.PetID, &rec.Diagnosis, &rec.Treatment, &rec.Notes, &rec.CreatedAt)
	return rec, err
}

func (r *RecordsRepo) Create(ctx context.Context, rec records.ClinicalRecord) error {
	_, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO clinical_records (id, appointment_id, pet_id, diagnosis, treatment, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rec.ID, rec.AppointmentID, rec.PetID, rec.Diagnosis, rec.Treatment, rec.Notes, rec.CreatedAt)
	return mapError(err, "clinical record", rec.ID)
}

func (r *RecordsRepo) AddPrescriptions(ctx context.Context, recordID string, lines []records.PrescriptionLine) error {
	if len(lines) == 0 {
		return nil
	}
	b := psql.Insert("prescription_lines").Columns("id", "record_id", "item_id", "quantity", "instructions", "position")
	for _, l := range lines {
		b = b.Values(l.ID, recordID, l.ItemID, l.Quantity, l.Instructions, l.Position)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	return mapError(err, "prescriptions of record", recordID)
}

func (r *RecordsRepo) getOne(ctx context.Context, col, val string) (records.ClinicalRecord, error) {
	query, args, err := psql.Select(recordColumns...).From("clinical_records").Where(sq.Eq{col: val}).ToSql()
	if err != nil {
		return records.ClinicalRecord{}, err
	}
	rec, err := scanRecord(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return records.ClinicalRecord{}, mapError(err, "clinical record", val)
	}
	if err := r.attachPrescriptions(ctx, []*records.ClinicalRecord{&rec}); err != nil {
		return records.ClinicalRecord{}, err
	}
	return rec, nil
}

func (r *RecordsRepo) GetByID(ctx context.Context, id string) (records.ClinicalRecord, error) {
	return r.getOne(ctx, "id", id)
}

func (r *RecordsRepo) GetByAppointment(ctx context.Context, appointmentID string) (records.ClinicalRecord, error) {
	return r.getOne(ctx, "appointment_id", appointmentID)
}

func (r *RecordsRepo) ListByPet(ctx context.Context, petID string, f records.HistoryFilter) ([]records.ClinicalRecord, error) {
	b := psql.Select(recordColumns...).From("clinical_records").
		Where(sq.Eq{"pet_id": petID}).
		OrderBy("created_at DESC", "id DESC")

	if f.From != nil {
		b = b.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.LtOrEq{"created_at": *f.To})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		b = b.Where(sq.Or{
			sq.ILike{"diagnosis": like},
			sq.ILike{"treatment": like},
			sq.ILike{"notes": like},
		})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "clinical records of pet", petID)
	}
	out := make([]records.ClinicalRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, mapError(err, "clinical records of pet", petID)
		}
		out = append(out, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "clinical records of pet", petID)
	}

	ptrs := make([]*records.ClinicalRecord, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := r.attachPrescriptions(ctx, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

// attachPrescriptions carga las recetas de varias fichas en una sola consulta.
func (r *RecordsRepo) attachPrescriptions(ctx context.Context, recs []*records.ClinicalRecord) error {
	if len(recs) == 0 {
		return nil
	}
	byID := make(map[string]*records.ClinicalRecord, len(recs))
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		rec.Prescriptions = []records.PrescriptionLine{}
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	query, args, err := psql.Select("id", "record_id", "item_id", "quantity", "instructions", "position").
		From("prescription_lines").
		Where(sq.Eq{"record_id": ids}).
		OrderBy("record_id", "position").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return mapError(err, "prescriptions", "batch")
	}
	defer rows.Close()

	for rows.Next() {
		var l records.PrescriptionLine
		if err := rows.Scan(&l.ID, &l.RecordID, &l.ItemID, &l.Quantity, &l.Instructions, &l.Position); err != nil {
			return mapError(err, "prescriptions", "batch")
		}
		if rec, ok := byID[l.RecordID]; ok {
			rec.Prescriptions = append(rec.Prescriptions, l)
		}
	}
	return mapError(rows.Err(), "prescriptions", "batch")
}
