package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	leaderboarddomain "github.com/Gr33nOps/VTcade/app/modules/leaderboard/domain"
	leaderboarddto "github.com/Gr33nOps/VTcade/app/modules/leaderboard/dto"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/Gr33nOps/VTcade/pkg/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "LeaderboardService"

	// DefaultRecentLimit is the page size of RecentSubmissions when none is given.
	DefaultRecentLimit = 20

	maxIDLength = 50
)

// LeaderboardService implements the Service interface. It never caches:
// every call reads the store.
type LeaderboardService struct {
	reader      ScoreReader
	engine      *RankingEngine
	logger      *slog.Logger
	metrics     observability.OperationMetrics
	tracer      trace.Tracer
	recentLimit int
	palette     ChartPalette
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	reader ScoreReader,
	engine *RankingEngine,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	recentLimit int,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &LeaderboardService{
		reader:      reader,
		engine:      engine,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		recentLimit: recentLimit,
		palette:     DefaultChartPalette,
	}
}

// GetTopN returns the head of a game's leaderboard.
func (s *LeaderboardService) GetTopN(ctx context.Context, gameID string, n int) (*leaderboarddto.TopNResponse, error) {
	return unwrap(withTelemetry(s, ctx, "GetTopN", gameID, func(ctx context.Context) (results.OperationResult[*leaderboarddto.TopNResponse, error], error) {
		gameID, err := normalizeID("game id", gameID)
		if err != nil {
			return results.FailureResult[*leaderboarddto.TopNResponse, error](err), nil
		}

		standings, total, err := s.engine.TopNWithTotal(ctx, gameID, n)
		if err != nil {
			if errors.Is(err, ErrInvalidArgument) {
				return results.FailureResult[*leaderboarddto.TopNResponse, error](err), nil
			}
			return results.OperationResult[*leaderboarddto.TopNResponse, error]{}, err
		}

		entries := make([]leaderboarddto.LeaderboardEntry, len(standings))
		for i, st := range standings {
			entries[i] = toEntryDTO(st)
		}
		return results.SuccessResult[*leaderboarddto.TopNResponse, error](&leaderboarddto.TopNResponse{
			GameID:       gameID,
			Entries:      entries,
			Total:        len(entries),
			TotalPlayers: total,
		}), nil
	}))
}

// GetPlayerStanding returns a player's rank together with the number of ranked players.
func (s *LeaderboardService) GetPlayerStanding(ctx context.Context, gameID, playerID string) (*leaderboarddto.PlayerStanding, error) {
	return unwrap(withTelemetry(s, ctx, "GetPlayerStanding", gameID, func(ctx context.Context) (results.OperationResult[*leaderboarddto.PlayerStanding, error], error) {
		gameID, playerID, err := normalizeKey(gameID, playerID)
		if err != nil {
			return results.FailureResult[*leaderboarddto.PlayerStanding, error](err), nil
		}

		standing, total, err := s.engine.StandingWithTotal(ctx, gameID, playerID)
		if err != nil {
			return results.OperationResult[*leaderboarddto.PlayerStanding, error]{}, err
		}

		out := &leaderboarddto.PlayerStanding{
			GameID:       gameID,
			PlayerID:     playerID,
			TotalPlayers: total,
		}
		if standing != nil {
			out.Found = true
			out.Rank = standing.Rank
			out.Score = standing.Score
			out.UpdatedAt = standing.UpdatedAt
		}
		return results.SuccessResult[*leaderboarddto.PlayerStanding, error](out), nil
	}))
}

// GetPersonalBest returns a player's best score in a game.
func (s *LeaderboardService) GetPersonalBest(ctx context.Context, gameID, playerID string) (*leaderboarddto.PersonalBest, error) {
	return unwrap(withTelemetry(s, ctx, "GetPersonalBest", gameID, func(ctx context.Context) (results.OperationResult[*leaderboarddto.PersonalBest, error], error) {
		gameID, playerID, err := normalizeKey(gameID, playerID)
		if err != nil {
			return results.FailureResult[*leaderboarddto.PersonalBest, error](err), nil
		}

		out := &leaderboarddto.PersonalBest{GameID: gameID, PlayerID: playerID}
		best, err := s.reader.Get(ctx, nil, playerID, gameID)
		switch {
		case errors.Is(err, scoredb.ErrNotFound):
		case err != nil:
			return results.OperationResult[*leaderboarddto.PersonalBest, error]{}, storageErr(err)
		default:
			out.Exists = true
			out.Score = best.Score
			out.UpdatedAt = best.UpdatedAt
			out.Flagged = best.Flagged
		}
		return results.SuccessResult[*leaderboarddto.PersonalBest, error](out), nil
	}))
}

// ListGamesWithActivity returns the games that have at least one best score, ascending.
func (s *LeaderboardService) ListGamesWithActivity(ctx context.Context) (*leaderboarddto.GamesResponse, error) {
	return unwrap(withTelemetry(s, ctx, "ListGamesWithActivity", "", func(ctx context.Context) (results.OperationResult[*leaderboarddto.GamesResponse, error], error) {
		games, err := s.reader.ListGames(ctx, nil)
		if err != nil {
			return results.OperationResult[*leaderboarddto.GamesResponse, error]{}, storageErr(err)
		}
		if games == nil {
			games = []string{}
		}
		return results.SuccessResult[*leaderboarddto.GamesResponse, error](&leaderboarddto.GamesResponse{
			Games: games,
			Total: len(games),
		}), nil
	}))
}

// RecentSubmissions returns the latest logged submissions, optionally for one game or player.
func (s *LeaderboardService) RecentSubmissions(ctx context.Context, query leaderboarddto.SubmissionQuery) (*leaderboarddto.SubmissionsResponse, error) {
	return unwrap(withTelemetry(s, ctx, "RecentSubmissions", query.GameID, func(ctx context.Context) (results.OperationResult[*leaderboarddto.SubmissionsResponse, error], error) {
		filter, err := s.submissionFilter(query)
		if err != nil {
			return results.FailureResult[*leaderboarddto.SubmissionsResponse, error](err), nil
		}

		events, err := s.reader.ListRecentSubmissions(ctx, nil, filter)
		if err != nil {
			return results.OperationResult[*leaderboarddto.SubmissionsResponse, error]{}, storageErr(err)
		}

		out := make([]leaderboarddto.Submission, len(events))
		for i, e := range events {
			out[i] = leaderboarddto.Submission{
				ID:                e.ID.String(),
				PlayerID:          e.PlayerID,
				GameID:            e.GameID,
				SubmittedScore:    e.SubmittedScore,
				AcceptedAsNewBest: e.AcceptedAsNewBest,
				StoredScore:       e.StoredScore,
				CreatedAt:         e.CreatedAt,
			}
		}
		return results.SuccessResult[*leaderboarddto.SubmissionsResponse, error](&leaderboarddto.SubmissionsResponse{
			Submissions: out,
			Total:       len(out),
		}), nil
	}))
}

func (s *LeaderboardService) submissionFilter(query leaderboarddto.SubmissionQuery) (scoredb.SubmissionFilter, error) {
	filter := scoredb.SubmissionFilter{Limit: min(DefaultRecentLimit, s.recentLimit)}
	if query.Limit != nil {
		filter.Limit = *query.Limit
	}
	if filter.Limit < 1 || filter.Limit > s.recentLimit {
		return filter, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, s.recentLimit)
	}

	var err error
	if strings.TrimSpace(query.GameID) != "" {
		if filter.GameID, err = normalizeID("game id", query.GameID); err != nil {
			return filter, err
		}
	}
	if strings.TrimSpace(query.PlayerID) != "" {
		if filter.PlayerID, err = normalizeID("player id", query.PlayerID); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

func toEntryDTO(st leaderboarddomain.Standing) leaderboarddto.LeaderboardEntry {
	return leaderboarddto.LeaderboardEntry{
		Rank:      st.Rank,
		PlayerID:  st.PlayerID,
		Score:     st.Score,
		UpdatedAt: st.UpdatedAt,
		Flagged:   st.Flagged,
	}
}

func normalizeID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	if utf8.RuneCountInString(id) > maxIDLength {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidArgument, field, maxIDLength)
	}
	return id, nil
}

func normalizeKey(gameID, playerID string) (string, string, error) {
	gameID, err := normalizeID("game id", gameID)
	if err != nil {
		return "", "", err
	}
	playerID, err = normalizeID("player id", playerID)
	if err != nil {
		return "", "", err
	}
	return gameID, playerID, nil
}

// unwrap flattens an operation result into the (value, error) shape of the Service interface.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

// -----------------------------------------------------------------------------
// Operation helpers
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LeaderboardService,
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

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}
