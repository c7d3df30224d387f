package postgres

import (
	"context"
	"strings"

	"pet-clinic-ops/internal/domain/catalog"
)

type CatalogRepo struct {
	db DB
}

func NewCatalogRepo(db DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

const serviceColumns = `id, name, description, base_price::text, created_at, updated_at`

func scanService(row interface{ Scan(dest ...any) error }) (catalog.ClinicService, error) {
	var s catalog.ClinicService
	var price string
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &price, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return catalog.ClinicService{}, err
	}
	p, err := parseMoney("base_price", price)
	if err != nil {
		return catalog.ClinicService{}, err
	}
	s.BasePrice = p
	return s, nil
}

func (r *CatalogRepo) Create(ctx context.Context, s catalog.ClinicService) error {
	_, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO clinic_services (id, name, description, base_price, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, s.ID, s.Name, s.Description, s.BasePrice, s.CreatedAt, s.UpdatedAt)
	return mapError(err, "service", s.ID)
}

func (r *CatalogRepo) Update(ctx context.Context, s catalog.ClinicService) error {
	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE clinic_services
		SET name = $2, description = $3, base_price = $4, updated_at = $5
		WHERE id = $1
	`, s.ID, s.Name, s.Description, s.BasePrice, s.UpdatedAt)
	if err != nil {
		return mapError(err, "service", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("service", s.ID)
	}
	return nil
}

func (r *CatalogRepo) GetByID(ctx context.Context, id string) (catalog.ClinicService, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx, `SELECT `+serviceColumns+` FROM clinic_services WHERE id = $1`, id)
	s, err := scanService(row)
	if err != nil {
		return catalog.ClinicService{}, mapError(err, "service", id)
	}
	return s, nil
}

func (r *CatalogRepo) FindByName(ctx context.Context, name string) (catalog.ClinicService, error) {
	name = strings.TrimSpace(name)
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM clinic_services
		WHERE lower(name) = lower($1)
	`, name)
	s, err := scanService(row)
	if err != nil {
		return catalog.ClinicService{}, mapError(err, "service", name)
	}
	return s, nil
}

func (r *CatalogRepo) List(ctx context.Context) ([]catalog.ClinicService, error) {
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, `SELECT `+serviceColumns+` FROM clinic_services ORDER BY name ASC`)
	if err != nil {
		return nil, mapError(err, "services", "list")
	}
	defer rows.Close()

	out := make([]catalog.ClinicService, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, mapError(err, "services", "list")
		}
		out = append(out, s)
	}
	return out, mapError(rows.Err(), "services", "list")
}
