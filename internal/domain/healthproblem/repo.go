package healthproblem

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, hp *HealthProblem) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthProblem, error)
	Update(ctx context.Context, hp *HealthProblem) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List orders by severity descending, then storage order.
	List(ctx context.Context, limit, offset int) ([]*HealthProblem, int, error)
	// ListByCustomer returns a customer's problems in storage order.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*HealthProblem, error)
	ListByCustomers(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*HealthProblem, error)
	ExistsByCustomerAndName(ctx context.Context, customerID uuid.UUID, problemName string) (bool, error)
	DeleteByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	// SeveritySums maps every customer owning at least one problem to its sum.
	SeveritySums(ctx context.Context) (map[uuid.UUID]int, error)
}

// CustomerChecker reports whether a customer exists. The customer repository
// satisfies it.
type CustomerChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
