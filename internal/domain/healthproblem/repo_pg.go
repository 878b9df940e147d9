package healthproblem

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthmanager/healthmanager/internal/platform/apperr"
	"github.com/healthmanager/healthmanager/internal/platform/db"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type healthProblemRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &healthProblemRepoPG{pool: pool}
}

func (r *healthProblemRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const hpCols = `id, seq, customer_id, problem_name, severity, created_at, updated_at`

func (r *healthProblemRepoPG) scanRow(row pgx.Row) (*HealthProblem, error) {
	var hp HealthProblem
	err := row.Scan(&hp.ID, &hp.Seq, &hp.CustomerID, &hp.ProblemName, &hp.Severity, &hp.CreatedAt, &hp.UpdatedAt)
	return &hp, err
}

func (r *healthProblemRepoPG) Create(ctx context.Context, hp *HealthProblem) error {
	hp.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO health_problem (id, customer_id, problem_name, severity)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at, updated_at`,
		hp.ID, hp.CustomerID, hp.ProblemName, hp.Severity,
	).Scan(&hp.Seq, &hp.CreatedAt, &hp.UpdatedAt)
	return translateWriteErr(err)
}

func (r *healthProblemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthProblem, error) {
	hp, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+hpCols+` FROM health_problem WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("get health problem: %w", err)
	}
	return hp, nil
}

func (r *healthProblemRepoPG) Update(ctx context.Context, hp *HealthProblem) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE health_problem SET problem_name = $2, severity = $3,
			updated_at = GREATEST(updated_at, NOW())
		WHERE id = $1
		RETURNING updated_at`,
		hp.ID, hp.ProblemName, hp.Severity,
	).Scan(&hp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound()
	}
	return translateWriteErr(err)
}

func (r *healthProblemRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM health_problem WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete health problem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound()
	}
	return nil
}

func (r *healthProblemRepoPG) List(ctx context.Context, limit, offset int) ([]*HealthProblem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM health_problem`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count health problems: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+hpCols+` FROM health_problem
		ORDER BY severity DESC, seq ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list health problems: %w", err)
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *healthProblemRepoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*HealthProblem, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+hpCols+` FROM health_problem
		WHERE customer_id = $1 ORDER BY seq ASC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list health problems by customer: %w", err)
	}
	return r.collect(rows)
}

func (r *healthProblemRepoPG) ListByCustomers(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*HealthProblem, error) {
	result := make(map[uuid.UUID][]*HealthProblem, len(customerIDs))
	if len(customerIDs) == 0 {
		return result, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+hpCols+` FROM health_problem
		WHERE customer_id = ANY($1) ORDER BY seq ASC`, customerIDs)
	if err != nil {
		return nil, fmt.Errorf("list health problems by customers: %w", err)
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	for _, hp := range items {
		result[hp.CustomerID] = append(result[hp.CustomerID], hp)
	}
	return result, nil
}

func (r *healthProblemRepoPG) ExistsByCustomerAndName(ctx context.Context, customerID uuid.UUID, problemName string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM health_problem WHERE customer_id = $1 AND problem_name = $2)`,
		customerID, problemName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check health problem name: %w", err)
	}
	return exists, nil
}

func (r *healthProblemRepoPG) DeleteByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM health_problem WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, fmt.Errorf("delete health problems by customer: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *healthProblemRepoPG) SeveritySums(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT customer_id, SUM(severity)
		FROM health_problem GROUP BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("sum severities by customer: %w", err)
	}
	defer rows.Close()
	sums := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var sum int
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan severity sum: %w", err)
		}
		sums[id] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate severity sums: %w", err)
	}
	return sums, nil
}

func (r *healthProblemRepoPG) collect(rows pgx.Rows) ([]*HealthProblem, error) {
	defer rows.Close()
	var items []*HealthProblem
	for rows.Next() {
		hp, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan health problem: %w", err)
		}
		items = append(items, hp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate health problems: %w", err)
	}
	return items, nil
}

// translateWriteErr maps constraint violations raised by concurrent writers
// onto the same kinds the service checks report.
func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, err, conflictMessage)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindNotFound, err, customerNotFoundMessage)
		}
	}
	return fmt.Errorf("write health problem: %w", err)
}
