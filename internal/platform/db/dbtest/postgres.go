//go:build integration

// Package dbtest starts a throwaway Postgres for repository integration tests
// and applies the embedded migrations to it.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/healthmanager/healthmanager/internal/platform/db"
)

type Postgres struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// Start runs postgres:16-alpine, migrates it and registers cleanup on t.
func Start(ctx context.Context, t *testing.T) *Postgres {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("healthmanager"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	pg := &Postgres{Container: container}
	t.Cleanup(func() { pg.terminate(t) })

	pg.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	m, err := db.NewMigrator(pg.DSN)
	if err != nil {
		t.Fatalf("failed to open migrator: %v", err)
	}
	if _, err := m.Up(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Logf("warning: failed to close migrator: %v", err)
	}

	pg.Pool, err = db.NewPool(ctx, pg.DSN, 5, 1)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	return pg
}

// Truncate empties every table between tests.
func (pg *Postgres) Truncate(ctx context.Context, t *testing.T) {
	t.Helper()
	if _, err := pg.Pool.Exec(ctx, `TRUNCATE health_problem, customer, handler_exception`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func (pg *Postgres) terminate(t *testing.T) {
	if pg.Pool != nil {
		pg.Pool.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate postgres container: %v", err)
	}
}
