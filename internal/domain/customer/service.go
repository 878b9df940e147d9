package customer

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthmanager/healthmanager/internal/domain/healthproblem"
	"github.com/healthmanager/healthmanager/internal/domain/scoring"
	"github.com/healthmanager/healthmanager/internal/platform/apperr"
	"github.com/healthmanager/healthmanager/internal/platform/crud"
	"github.com/healthmanager/healthmanager/internal/platform/db"
	"github.com/healthmanager/healthmanager/pkg/pagination"
)

const notFoundMessage = "Customer not found, please check the id"

func ErrNotFound() error { return apperr.NotFound(notFoundMessage) }

// ProblemStore is the part of the health-problem repository the customer
// aggregate reads and cascades through.
type ProblemStore interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*healthproblem.HealthProblem, error)
	ListByCustomers(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*healthproblem.HealthProblem, error)
	DeleteByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	SeveritySums(ctx context.Context) (map[uuid.UUID]int, error)
}

var _ crud.Service[Request, View, Ref] = (*Service)(nil)

type Service struct {
	repo     Repository
	problems ProblemStore
	tx       db.TxManager
	logger   zerolog.Logger
}

func NewService(repo Repository, problems ProblemStore, tx db.TxManager, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		problems: problems,
		tx:       tx,
		logger:   logger.With().Str("component", "customer").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, req Request) (Ref, error) {
	if err := req.Validate(); err != nil {
		return Ref{}, err
	}
	c := &Customer{FullName: req.FullName, DateBirth: *req.DateBirth, Sex: req.Sex}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, c)
	})
	if err != nil {
		return Ref{}, err
	}
	s.logger.Debug().Str("customer_id", c.ID.String()).Msg("customer created")
	return Ref{ID: c.ID, FullName: c.FullName}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (View, error) {
	var view View
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		problems, err := s.problems.ListByCustomer(ctx, id)
		if err != nil {
			return err
		}
		severities := make([]int, len(problems))
		for i, hp := range problems {
			severities[i] = int(hp.Severity)
		}
		view = compose(c, problems, scoring.RiskScore(scoring.SeveritySum(severities...)))
		return nil
	})
	return view, err
}

// List pages through every customer ordered by risk score.
func (s *Service) List(ctx context.Context, p pagination.Params) (*pagination.Page[View], error) {
	return s.Search(ctx, "", p)
}

type scored struct {
	customer *Customer
	score    scoring.Score
}

// Search scores every customer matching nameFilter, stable-sorts them by
// score descending (ties keep insertion order) and returns the requested
// page. Health problems are loaded only for the customers on that page.
func (s *Service) Search(ctx context.Context, nameFilter string, p pagination.Params) (*pagination.Page[View], error) {
	var page *pagination.Page[View]
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		customers, err := s.repo.ListAll(ctx, nameFilter)
		if err != nil {
			return err
		}
		sums, err := s.problems.SeveritySums(ctx)
		if err != nil {
			return err
		}

		all := make([]scored, len(customers))
		for i, c := range customers {
			all[i] = scored{customer: c, score: scoring.RiskScore(sums[c.ID])}
		}
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].score.Cmp(all[j].score) > 0
		})

		slice := pagination.Slice(all, p)
		ids := make([]uuid.UUID, len(slice.Content))
		for i, e := range slice.Content {
			ids[i] = e.customer.ID
		}
		byCustomer, err := s.problems.ListByCustomers(ctx, ids)
		if err != nil {
			return err
		}

		views := make([]View, len(slice.Content))
		for i, e := range slice.Content {
			views[i] = compose(e.customer, byCustomer[e.customer.ID], e.score)
		}
		page = pagination.NewPage(views, p, slice.TotalElements)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Update replaces name, date of birth and sex. The health-problem collection
// and created_at are left alone.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req Request) (Ref, error) {
	if err := req.Validate(); err != nil {
		return Ref{}, err
	}
	var c *Customer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		c.FullName = req.FullName
		c.DateBirth = *req.DateBirth
		c.Sex = req.Sex
		return s.repo.Update(ctx, c)
	})
	if err != nil {
		return Ref{}, err
	}
	s.logger.Debug().Str("customer_id", id.String()).Msg("customer updated")
	return Ref{ID: c.ID, FullName: c.FullName}, nil
}

// Delete removes the customer and every health problem it owns in one
// transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (Ref, error) {
	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound()
		}
		removed, err = s.problems.DeleteByCustomer(ctx, id)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return Ref{}, err
	}
	s.logger.Debug().
		Str("customer_id", id.String()).
		Int64("health_problems_removed", removed).
		Msg("customer deleted")
	return Ref{ID: id}, nil
}

// compose builds the read view. problems must be in storage order; the stable
// sort keeps insertion order among equal severities.
func compose(c *Customer, problems []*healthproblem.HealthProblem, score scoring.Score) View {
	sorted := make([]*healthproblem.HealthProblem, len(problems))
	copy(sorted, problems)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})

	views := make([]healthproblem.View, len(sorted))
	for i, hp := range sorted {
		views[i] = hp.ToView()
	}
	return View{
		ID:             c.ID,
		FullName:       c.FullName,
		DateBirth:      c.DateBirth,
		Sex:            c.Sex,
		Score:          score,
		HealthProblems: views,
	}
}
