package scoreservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/Gr33nOps/VTcade/pkg/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ScoreService"

// ScoreService implements the Service interface.
type ScoreService struct {
	repo         scoredb.Repository
	logger       *slog.Logger
	metrics      observability.ScoreMetrics
	tracer       trace.Tracer
	db           *bun.DB
	catalog      GameCatalog
	publisher    message.Publisher
	storeTimeout time.Duration
	logEnabled   bool
	now          func() time.Time
}

// Option configures a ScoreService.
type Option func(*ScoreService)

// WithCatalog enables the known-game check on submissions.
func WithCatalog(c GameCatalog) Option {
	return func(s *ScoreService) { s.catalog = c }
}

// WithPublisher enables best-effort domain events.
func WithPublisher(p message.Publisher) Option {
	return func(s *ScoreService) { s.publisher = p }
}

// WithStoreTimeout bounds every store call made on the submission path.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *ScoreService) { s.storeTimeout = d }
}

// WithSubmissionLog turns the append-only submission log on or off.
func WithSubmissionLog(enabled bool) Option {
	return func(s *ScoreService) { s.logEnabled = enabled }
}

// NewScoreService creates a new ScoreService.
func NewScoreService(
	repo scoredb.Repository,
	logger *slog.Logger,
	metrics observability.ScoreMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	s := &ScoreService{
		repo:       repo,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
		logEnabled: true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates a raw score and raises the player's best when it is strictly higher.
// A returned error other than a validation failure means the submission is not confirmed.
func (s *ScoreService) Submit(ctx context.Context, playerID, gameID string, raw any) (*SubmissionResult, error) {
	result, err := withTelemetry(s, ctx, "Submit", gameID, func(ctx context.Context) (results.OperationResult[*SubmissionResult, error], error) {
		return s.submitLogic(ctx, playerID, gameID, raw)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// submitLogic contains the core logic.
func (s *ScoreService) submitLogic(ctx context.Context, playerID, gameID string, raw any) (results.OperationResult[*SubmissionResult, error], error) {
	reject := func(err error) (results.OperationResult[*SubmissionResult, error], error) {
		s.metrics.RecordSubmission(ctx, "", observability.OutcomeRejected)
		return results.FailureResult[*SubmissionResult, error](err), nil
	}

	playerID, err := NormalizeID("player id", playerID)
	if err != nil {
		return reject(err)
	}
	gameID, err = NormalizeID("game id", gameID)
	if err != nil {
		return reject(err)
	}
	score, err := ParseScore(raw)
	if err != nil {
		return reject(err)
	}

	if s.catalog != nil {
		known, err := s.catalog.IsKnownGame(ctx, gameID)
		if err != nil {
			return results.OperationResult[*SubmissionResult, error]{}, fmt.Errorf("failed to check game catalog: %w", err)
		}
		if !known {
			return reject(fmt.Errorf("%w: %s", ErrUnknownGame, gameID))
		}
	}

	raiseCtx, cancel := s.storeContext(ctx)
	best, improved, err := s.repo.RaiseIfHigher(raiseCtx, nil, playerID, gameID, score)
	cancel()
	if err != nil {
		s.metrics.RecordSubmission(ctx, gameID, observability.OutcomeUnavailable)
		return results.OperationResult[*SubmissionResult, error]{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if improved {
		s.metrics.RecordSubmission(ctx, gameID, observability.OutcomeImproved)
	} else {
		s.metrics.RecordSubmission(ctx, gameID, observability.OutcomeUnchanged)
	}

	s.appendSubmission(ctx, playerID, gameID, score, best.Score, improved)
	if improved {
		s.publishBestScoreRaised(ctx, best, score)
	}

	return results.SuccessResult[*SubmissionResult, error](&SubmissionResult{
		StoredScore: best.Score,
		WasImproved: improved,
	}), nil
}

// appendSubmission writes to the submission log. Failures never affect the submission.
func (s *ScoreService) appendSubmission(ctx context.Context, playerID, gameID string, submitted, stored int64, improved bool) {
	if !s.logEnabled {
		return
	}

	logCtx, cancel := s.storeContext(ctx)
	defer cancel()

	event := &scoredb.SubmissionEvent{
		PlayerID:          playerID,
		GameID:            gameID,
		SubmittedScore:    submitted,
		AcceptedAsNewBest: improved,
		StoredScore:       stored,
	}
	if err := s.repo.AppendSubmission(logCtx, nil, event); err != nil {
		s.metrics.RecordSubmissionLogFailure(ctx)
		s.logger.WarnContext(ctx, "Failed to append submission log",
			slog.String("player_id", playerID),
			slog.String("game_id", gameID),
			slog.Any("error", err),
		)
	}
}

func (s *ScoreService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// -----------------------------------------------------------------------------
// Operation helpers
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ScoreService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.DebugContext(ctx, "Operation triggered", slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ScoreService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
