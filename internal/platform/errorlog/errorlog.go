// Package errorlog persists every error rendered at the HTTP boundary to the
// handler_exception table.
package errorlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Entry maps to the handler_exception table.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CreatedAt   time.Time `db:"created_at" json:"timestamp"`
	Status      int       `db:"status" json:"status"`
	Error       string    `db:"error" json:"error"`
	Message     string    `db:"message" json:"message"`
	RequestPath string    `db:"request_path" json:"request_path"`
}

type Repository interface {
	Create(ctx context.Context, e *Entry) error
}

// Recorder writes entries on a best-effort basis: a failed write is logged
// and otherwise ignored.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record stores e. It runs outside any request transaction, so an entry
// survives the rollback of the operation that failed.
func (r *Recorder) Record(ctx context.Context, e *Entry) {
	if r == nil || r.repo == nil {
		return
	}
	if err := r.repo.Create(context.WithoutCancel(ctx), e); err != nil {
		r.logger.Warn().Err(err).
			Int("status", e.Status).
			Str("request_path", e.RequestPath).
			Msg("failed to persist handler exception")
	}
}
