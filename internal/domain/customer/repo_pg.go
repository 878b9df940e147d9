package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthmanager/healthmanager/internal/platform/db"
)

type customerRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &customerRepoPG{pool: pool}
}

func (r *customerRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const customerCols = `id, seq, full_name, date_birth, sex, created_at, updated_at`

func (r *customerRepoPG) scanRow(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Seq, &c.FullName, &c.DateBirth.Time, &c.Sex, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *customerRepoPG) Create(ctx context.Context, c *Customer) error {
	c.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO customer (id, full_name, date_birth, sex)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at, updated_at`,
		c.ID, c.FullName, c.DateBirth.Time, string(c.Sex),
	).Scan(&c.Seq, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *customerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+customerCols+` FROM customer WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *customerRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customer WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer: %w", err)
	}
	return exists, nil
}

func (r *customerRepoPG) Update(ctx context.Context, c *Customer) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE customer SET full_name = $2, date_birth = $3, sex = $4,
			updated_at = GREATEST(updated_at, NOW())
		WHERE id = $1
		RETURNING created_at, updated_at`,
		c.ID, c.FullName, c.DateBirth.Time, string(c.Sex),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound()
	}
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *customerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM customer WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound()
	}
	return nil
}

func (r *customerRepoPG) ListAll(ctx context.Context, nameFilter string) ([]*Customer, error) {
	query := `SELECT ` + customerCols + ` FROM customer`
	var args []interface{}
	if nameFilter != "" {
		query += ` WHERE lower(full_name) LIKE '%' || lower($1) || '%'`
		args = append(args, likeEscaper.Replace(nameFilter))
	}
	query += ` ORDER BY seq ASC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var items []*Customer
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return items, nil
}
