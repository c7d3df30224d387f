package postgres

import (
	"context"
	"strings"
	"time"

	"pet-clinic-ops/internal/domain/pets"
)

type PetsRepo struct {
	db DB
}

func NewPetsRepo(db DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) CreateOwner(ctx context.Context, o pets.Owner) error {
	_, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO owners (id, name, phone, email, address, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, o.ID, o.Name, o.Phone, o.Email, o.Address, o.CreatedAt)
	return mapError(err, "owner", o.ID)
}

func (r *PetsRepo) GetOwner(ctx context.Context, id string) (pets.Owner, error) {
	var o pets.Owner
	err := QuerierFromCtx(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, phone, email, address, created_at
		FROM owners
		WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.Phone, &o.Email, &o.Address, &o.CreatedAt)
	if err != nil {
		return pets.Owner{}, mapError(err, "owner", id)
	}
	return o, nil
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO pets (
			id, owner_id,
			name, species, breed, sex,
			birth_date, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Species,
		p.Breed,
		p.Sex,
		p.BirthDate,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapError(err, "pet", p.ID)
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			sex = $5,
			birth_date = $6,
			notes = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Species,
		p.Breed,
		p.Sex,
		p.BirthDate,
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "pet", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("pet", p.ID)
	}
	return nil
}

const petColumns = `
	id, owner_id,
	name, species, breed, sex,
	birth_date, notes,
	created_at, updated_at`

func scanPet(row interface{ Scan(dest ...any) error }) (pets.Pet, error) {
	var p pets.Pet
	var bd *time.Time
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.Sex,
		&bd,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	// birth_date es date: pgx lo devuelve como medianoche UTC
	p.BirthDate = bd
	return p, nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, notFound("pet", id)
	}

	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, mapError(err, "pet", id)
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, mapError(err, "pets of owner", ownerID)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, mapError(err, "pets of owner", ownerID)
		}
		out = append(out, p)
	}
	return out, mapError(rows.Err(), "pets of owner", ownerID)
}
