package pets

import "context"

type Repository interface {
	CreateOwner(ctx context.Context, o Owner) error
	GetOwner(ctx context.Context, id string) (Owner, error)

	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
}
