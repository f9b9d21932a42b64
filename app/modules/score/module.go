package score

import (
	"context"
	"net/http"
	"sync"

	scoreservice "github.com/Gr33nOps/VTcade/app/modules/score/application"
	scorehandlers "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/handlers"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/config"
	"github.com/Gr33nOps/VTcade/internal/maintenance"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the score module: submissions and admin corrections.
type Module struct {
	ScoreService  scoreservice.Service
	Handlers      *scorehandlers.ScoreHandlers
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewScoreModule creates and initializes a new score module. db may be nil
// when repo is not backed by Postgres.
func NewScoreModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	repo scoredb.Repository,
	publisher message.Publisher,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "score.NewScoreModule initializing")

	opts := []scoreservice.Option{
		scoreservice.WithStoreTimeout(cfg.Leaderboard.StoreTimeout),
		scoreservice.WithSubmissionLog(cfg.Leaderboard.SubmissionLogEnabled),
	}
	if len(cfg.Leaderboard.Games) > 0 {
		opts = append(opts, scoreservice.WithCatalog(scoreservice.NewStaticCatalog(cfg.Leaderboard.Games)))
	}
	if publisher != nil {
		opts = append(opts, scoreservice.WithPublisher(publisher))
	}

	service := scoreservice.NewScoreService(repo, logger, obs.Metrics, obs.Tracer, db, opts...)
	handlers := scorehandlers.NewScoreHandlers(service, logger, obs.Tracer)

	return &Module{
		ScoreService:  service,
		Handlers:      handlers,
		observability: obs,
	}, nil
}

// RegisterRoutes mounts the submission route behind player auth and the
// maintenance gate, and the correction routes behind admin auth.
func (m *Module) RegisterRoutes(r chi.Router, player, admin func(http.Handler) http.Handler, gate *maintenance.Gate) {
	r.Group(func(r chi.Router) {
		r.Use(player)
		r.Use(gate.Middleware)
		r.Post("/api/scores", m.Handlers.HandleSubmitScore)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Delete("/api/admin/leaderboards/{game}", m.Handlers.HandleResetGame)
		r.Delete("/api/admin/leaderboards/{game}/players/{player}", m.Handlers.HandleDeleteEntry)
		r.Put("/api/admin/leaderboards/{game}/players/{player}/flag", m.Handlers.HandleFlagEntry)
	})
}

// Run starts the score module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting score module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Score module goroutine stopped")
}

// Close shuts down the score module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping score module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Score module stopped")
	return nil
}
