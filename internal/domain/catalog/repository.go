package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, s ClinicService) error
	Update(ctx context.Context, s ClinicService) error
	GetByID(ctx context.Context, id string) (ClinicService, error)
	// FindByName compara sin distinguir mayúsculas y sin espacios extremos.
	FindByName(ctx context.Context, name string) (ClinicService, error)
	List(ctx context.Context) ([]ClinicService, error)
}
