package customer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListAll returns every customer in insertion order. A non-empty
	// nameFilter keeps only customers whose full name contains it, ignoring
	// case.
	ListAll(ctx context.Context, nameFilter string) ([]*Customer, error)
}
