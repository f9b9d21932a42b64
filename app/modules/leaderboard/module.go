package leaderboard

import (
	"context"
	"net/http"
	"sync"

	leaderboardservice "github.com/Gr33nOps/VTcade/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/Gr33nOps/VTcade/app/modules/leaderboard/infrastructure/handlers"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/config"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module: ranking and read views.
type Module struct {
	LeaderboardService leaderboardservice.Service
	Engine             *leaderboardservice.RankingEngine
	Handlers           *leaderboardhandlers.LeaderboardHandlers
	cancelFunc         context.CancelFunc
	observability      observability.Observability
}

// NewLeaderboardModule creates and initializes a new leaderboard module.
func NewLeaderboardModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	repo scoredb.Repository,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule initializing")

	engine := leaderboardservice.NewRankingEngine(repo, db, cfg.Leaderboard.MaxTopN)
	service := leaderboardservice.NewLeaderboardService(repo, engine, logger, obs.Metrics, obs.Tracer, cfg.Leaderboard.RecentLimit)
	handlers := leaderboardhandlers.NewLeaderboardHandlers(service, logger, obs.Tracer)

	return &Module{
		LeaderboardService: service,
		Engine:             engine,
		Handlers:           handlers,
		observability:      obs,
	}, nil
}

// RegisterRoutes mounts the public read routes and the admin export.
func (m *Module) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/api/leaderboards", m.Handlers.HandleListGames)
	r.Get("/api/leaderboards/{game}", m.Handlers.HandleTopN)
	r.Get("/api/leaderboards/{game}/players/{player}", m.Handlers.HandlePlayerStanding)
	r.Get("/api/leaderboards/{game}/players/{player}/best", m.Handlers.HandlePersonalBest)
	r.Get("/api/leaderboards/{game}/players/{player}/chart.png", m.Handlers.HandleProgressChart)
	r.Get("/api/submissions/recent", m.Handlers.HandleRecentSubmissions)

	r.With(admin).Get("/api/admin/leaderboards/{game}/export", m.Handlers.HandleExport)
}

// Run starts the leaderboard module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close shuts down the leaderboard module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping leaderboard module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Leaderboard module stopped")
	return nil
}
