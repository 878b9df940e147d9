package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthmanager/healthmanager/internal/config"
	"github.com/healthmanager/healthmanager/internal/platform/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "healthmanager-server",
		Short:        "Health Manager API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrateFirst, _ := cmd.Flags().GetBool("migrate")
			return runServer(cmd.Context(), migrateFirst)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *db.Migrator) error {
				changed, err := m.Up()
				if err != nil {
					return err
				}
				if !changed {
					fmt.Println("No pending migrations.")
					return nil
				}
				return printVersion(m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *db.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				return printVersion(m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(printVersion)
		},
	})

	return cmd
}

func withMigrator(fn func(*db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func printVersion(m *db.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Printf("Schema version: %d (%s)\n", version, state)
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg != nil && cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if cfg != nil {
		logger = logger.Level(cfg.Level())
	}
	return logger
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
