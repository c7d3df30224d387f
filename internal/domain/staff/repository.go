package staff

import "context"

type Repository interface {
	Create(ctx context.Context, m Member) error
	GetByID(ctx context.Context, id string) (Member, error)
	List(ctx context.Context) ([]Member, error)
}
