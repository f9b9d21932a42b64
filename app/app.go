package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Gr33nOps/VTcade/app/modules/auth"
	"github.com/Gr33nOps/VTcade/app/modules/leaderboard"
	"github.com/Gr33nOps/VTcade/app/modules/score"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/config"
	"github.com/Gr33nOps/VTcade/db/bundb"
	"github.com/Gr33nOps/VTcade/internal/eventbus"
	"github.com/Gr33nOps/VTcade/internal/maintenance"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired leaderboard service.
type App struct {
	Config            *config.Config
	Observability     observability.Observability
	DB                *bun.DB
	Publisher         message.Publisher
	Gate              *maintenance.Gate
	AuthModule        *auth.Module
	ScoreModule       *score.Module
	LeaderboardModule *leaderboard.Module
	Router            chi.Router

	server        *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// Initialize builds every collaborator from cfg.
func (app *App) Initialize(ctx context.Context, cfg *config.Config) error {
	app.Config = cfg

	obs, err := observability.Init(cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	app.Observability = obs
	logger := obs.Logger

	repo, err := app.initStore(ctx)
	if err != nil {
		return err
	}

	if err := app.initPublisher(); err != nil {
		return err
	}

	app.Gate = maintenance.NewGate(cfg.Leaderboard.Maintenance, logger)
	app.AuthModule = auth.NewModule(ctx, cfg, obs)

	if app.ScoreModule, err = score.NewScoreModule(ctx, cfg, obs, repo, app.Publisher, app.DB); err != nil {
		return fmt.Errorf("failed to initialize score module: %w", err)
	}
	if app.LeaderboardModule, err = leaderboard.NewLeaderboardModule(ctx, cfg, obs, repo, app.DB); err != nil {
		return fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}

	app.Router = app.newRouter()
	app.server = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.Observability.MetricsAddress != "" {
		app.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           obs.MetricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	logger.InfoContext(ctx, "Application initialized",
		"http_address", cfg.HTTP.Address,
		"store", app.storeKind(),
		"maintenance", app.Gate.Enabled(),
	)
	return nil
}

// initStore opens Postgres, or falls back to the in-memory store when no DSN is configured.
func (app *App) initStore(ctx context.Context) (scoredb.Repository, error) {
	logger := app.Observability.Logger
	if app.Config.Postgres.DSN == "" {
		logger.WarnContext(ctx, "No database configured, using in-memory score store")
		return scoredb.NewMemoryRepository(), nil
	}

	db, err := bundb.Open(ctx, app.Config.Postgres, logger)
	if err != nil {
		return nil, err
	}
	app.DB = db

	if app.Config.Postgres.AutoMigrate {
		if err := bundb.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.InfoContext(ctx, "Database migrations applied")
	}

	return scoredb.NewRepository(db), nil
}

func (app *App) initPublisher() error {
	wmLogger := watermill.NewSlogLogger(app.Observability.Logger)

	var pub message.Publisher
	if app.Config.NATS.URL == "" {
		pub = eventbus.NewInMemoryPublisher(wmLogger)
	} else {
		natsPub, err := eventbus.NewNATSPublisher(app.Config.NATS.URL, wmLogger)
		if err != nil {
			return err
		}
		pub = natsPub
	}

	instrumented, err := eventbus.Instrument(pub, app.Observability.Registry, observability.MetricsNamespace)
	if err != nil {
		return err
	}
	app.Publisher = instrumented
	return nil
}

func (app *App) storeKind() string {
	if app.DB == nil {
		return "memory"
	}
	return "postgres"
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	app.wg.Add(2)
	go app.ScoreModule.Run(ctx, &app.wg)
	go app.LeaderboardModule.Run(ctx, &app.wg)

	errCh := make(chan error, 2)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", "address", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	if app.metricsServer != nil {
		go func() {
			logger.InfoContext(ctx, "Metrics server listening", "address", app.metricsServer.Addr)
			if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		logger.Error("Server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", "error", err)
	}
	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down metrics server", "error", err)
		}
	}
	return runErr
}

// Close releases modules, the publisher and the database.
func (app *App) Close() error {
	logger := app.Observability.Logger
	var errs []error

	if app.ScoreModule != nil {
		errs = append(errs, app.ScoreModule.Close())
	}
	if app.LeaderboardModule != nil {
		errs = append(errs, app.LeaderboardModule.Close())
	}
	app.wg.Wait()

	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err == nil && logger != nil {
		logger.Info("Application shut down gracefully")
	}
	return err
}
