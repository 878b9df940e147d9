package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/healthmanager/healthmanager/internal/config"
	"github.com/healthmanager/healthmanager/internal/domain/customer"
	"github.com/healthmanager/healthmanager/internal/domain/healthproblem"
	"github.com/healthmanager/healthmanager/internal/platform/db"
	"github.com/healthmanager/healthmanager/internal/platform/errorlog"
	"github.com/healthmanager/healthmanager/internal/platform/httperr"
	"github.com/healthmanager/healthmanager/internal/platform/middleware"
	"github.com/healthmanager/healthmanager/internal/platform/openapi"
)

// apiInfo is served at GET /api.
type apiInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Documentation string `json:"documentation"`
	Repository    string `json:"repository"`
}

func runServer(ctx context.Context, migrateFirst bool) error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(nil)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if migrateFirst {
		if err := withMigrator(func(m *db.Migrator) error {
			changed, err := m.Up()
			if err == nil {
				logger.Info().Bool("changed", changed).Msg("migrations applied")
			}
			return err
		}); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(ctx), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := errorlog.NewRecorder(errorlog.NewRepoPG(pool), logger)

	e := newEcho(cfg, logger, reg, recorder)
	e.GET("/health", db.HealthHandler(pool))

	// Domain wiring
	tx := db.NewTxManager(pool)
	customerRepo := customer.NewRepoPG(pool)
	problemRepo := healthproblem.NewRepoPG(pool)

	customerSvc := customer.NewService(customerRepo, problemRepo, tx, logger)
	problemSvc := healthproblem.NewService(problemRepo, customerRepo, tx, logger)

	api := e.Group("/api")
	customer.NewHandler(customerSvc).RegisterRoutes(api)
	healthproblem.NewHandler(problemSvc).RegisterRoutes(api)

	// Start server
	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newEcho builds the server with global middleware, the error handler and the
// routes that do not depend on the database.
func newEcho(cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry, recorder *errorlog.Recorder) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httperr.New(logger, recorder).Handle

	metrics := middleware.NewMetrics(reg)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	info := apiInfo{
		Name:          cfg.AppName,
		Version:       cfg.AppVersion,
		Documentation: cfg.AppDocumentation,
		Repository:    cfg.AppRepository,
	}
	e.GET("/api", func(c echo.Context) error {
		return c.JSON(http.StatusOK, info)
	})
	e.GET("/metrics", metrics.Handler())

	openapi.NewGenerator(cfg.AppName, cfg.AppVersion, "/",
		customer.APIDoc(), healthproblem.APIDoc()).RegisterRoutes(e.Group("/api"))

	return e
}
