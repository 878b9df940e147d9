package errorlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type errorLogRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &errorLogRepoPG{pool: pool}
}

func (r *errorLogRepoPG) Create(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO handler_exception (id, created_at, status, error, message, request_path)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.CreatedAt, e.Status, e.Error, e.Message, e.RequestPath)
	if err != nil {
		return fmt.Errorf("insert handler exception: %w", err)
	}
	return nil
}
