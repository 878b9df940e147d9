package healthproblem

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthmanager/healthmanager/internal/platform/apperr"
	"github.com/healthmanager/healthmanager/internal/platform/crud"
	"github.com/healthmanager/healthmanager/internal/platform/db"
	"github.com/healthmanager/healthmanager/pkg/pagination"
)

const (
	notFoundMessage         = "Health Problem not found, please check the id"
	customerNotFoundMessage = "Customer not found, please check the id"
	conflictMessage         = "This Health Problem already exists in this Customer"
)

// ErrNotFound is returned when a health problem id does not exist.
func ErrNotFound() error { return apperr.NotFound(notFoundMessage) }

var _ crud.Service[Request, View, Ref] = (*Service)(nil)

// Service is the health-problem registry. Every method runs as one unit of
// work.
type Service struct {
	repo      Repository
	customers CustomerChecker
	tx        db.TxManager
	logger    zerolog.Logger
}

func NewService(repo Repository, customers CustomerChecker, tx db.TxManager, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		tx:        tx,
		logger:    logger.With().Str("component", "health_problem").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, req Request) (Ref, error) {
	if err := req.Validate(); err != nil {
		return Ref{}, err
	}
	if req.CustomerID == uuid.Nil {
		return Ref{}, apperr.Invalid("Customer uuid is required")
	}

	hp := &HealthProblem{
		CustomerID:  req.CustomerID,
		ProblemName: req.ProblemName,
		Severity:    req.Severity,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.customers.Exists(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound(customerNotFoundMessage)
		}
		if err := s.checkConflict(ctx, req.CustomerID, req.ProblemName); err != nil {
			return err
		}
		return s.repo.Create(ctx, hp)
	})
	if err != nil {
		return Ref{}, err
	}

	s.logger.Debug().
		Str("health_problem_id", hp.ID.String()).
		Str("customer_id", hp.CustomerID.String()).
		Int("severity", int(hp.Severity)).
		Msg("health problem created")
	return Ref{ID: hp.ID, ProblemName: hp.ProblemName}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (View, error) {
	var hp *HealthProblem
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		hp, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return View{}, err
	}
	return hp.ToView(), nil
}

func (s *Service) List(ctx context.Context, p pagination.Params) (*pagination.Page[View], error) {
	var (
		items []*HealthProblem
		total int
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		items, total, err = s.repo.List(ctx, p.Size, p.Offset())
		return err
	})
	if err != nil {
		return nil, err
	}
	views := make([]View, len(items))
	for i, hp := range items {
		views[i] = hp.ToView()
	}
	return pagination.NewPage(views, p, total), nil
}

// Update renames and/or re-grades a problem. The owner never changes, so the
// conflict check is scoped to the stored customer id, and it only runs when
// the name actually changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req Request) (Ref, error) {
	if err := req.Validate(); err != nil {
		return Ref{}, err
	}

	var hp *HealthProblem
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		hp, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if hp.ProblemName != req.ProblemName {
			if err := s.checkConflict(ctx, hp.CustomerID, req.ProblemName); err != nil {
				return err
			}
		}
		hp.ProblemName = req.ProblemName
		hp.Severity = req.Severity
		return s.repo.Update(ctx, hp)
	})
	if err != nil {
		return Ref{}, err
	}

	s.logger.Debug().Str("health_problem_id", id.String()).Msg("health problem updated")
	return Ref{ID: hp.ID, ProblemName: hp.ProblemName}, nil
}

// Delete removes a single problem. The owning customer's collection is read
// from the store on demand, so later reads in the same transaction already
// exclude it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (Ref, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return Ref{}, err
	}

	s.logger.Debug().Str("health_problem_id", id.String()).Msg("health problem deleted")
	return Ref{ID: id}, nil
}

// ListByCustomer returns the problems a customer owns in storage order. An
// unknown customer is NotFound, a customer without problems an empty slice.
func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]View, error) {
	var items []*HealthProblem
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.customers.Exists(ctx, customerID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound(customerNotFoundMessage)
		}
		items, err = s.repo.ListByCustomer(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	views := make([]View, len(items))
	for i, hp := range items {
		views[i] = hp.ToView()
	}
	return views, nil
}

func (s *Service) checkConflict(ctx context.Context, customerID uuid.UUID, problemName string) error {
	exists, err := s.repo.ExistsByCustomerAndName(ctx, customerID, problemName)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict(conflictMessage)
	}
	return nil
}
