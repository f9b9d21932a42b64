package scoreservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/pkg/results"
	"github.com/uptrace/bun"
)

// maxFlagReasonLength caps the free-text reason stored with a flag.
const maxFlagReasonLength = 200

// ResetGame deletes every best score of a game and returns how many were removed.
func (s *ScoreService) ResetGame(ctx context.Context, gameID string) (int, error) {
	result, err := withTelemetry(s, ctx, "ResetGame", gameID, func(ctx context.Context) (results.OperationResult[int, error], error) {
		gameID, err := NormalizeID("game id", gameID)
		if err != nil {
			return results.FailureResult[int, error](err), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
			deleted, err := s.repo.ResetGame(ctx, db, gameID)
			if err != nil {
				return results.OperationResult[int, error]{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
			}
			return results.SuccessResult[int, error](deleted), nil
		})
	})
	if err != nil {
		return 0, err
	}
	if result.IsFailure() {
		return 0, *result.Failure
	}

	s.publishGameReset(ctx, strings.TrimSpace(gameID), *result.Success)
	return *result.Success, nil
}

// DeleteEntry removes one player's best score in a game.
func (s *ScoreService) DeleteEntry(ctx context.Context, gameID, playerID string) error {
	result, err := withTelemetry(s, ctx, "DeleteEntry", gameID, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		gameID, playerID, err := normalizeKey(gameID, playerID)
		if err != nil {
			return results.FailureResult[bool, error](err), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
			return entryResult(s.repo.DeleteEntry(ctx, db, playerID, gameID))
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

// FlagEntry marks or clears a best score as suspicious. Flagged entries stay ranked.
func (s *ScoreService) FlagEntry(ctx context.Context, gameID, playerID, reason string, flagged bool) error {
	result, err := withTelemetry(s, ctx, "FlagEntry", gameID, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		gameID, playerID, err := normalizeKey(gameID, playerID)
		if err != nil {
			return results.FailureResult[bool, error](err), nil
		}
		reason = strings.TrimSpace(reason)
		if utf8.RuneCountInString(reason) > maxFlagReasonLength {
			return results.FailureResult[bool, error](fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidArgument, maxFlagReasonLength)), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
			return entryResult(s.repo.FlagEntry(ctx, db, playerID, gameID, reason, flagged))
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

func normalizeKey(gameID, playerID string) (string, string, error) {
	gameID, err := NormalizeID("game id", gameID)
	if err != nil {
		return "", "", err
	}
	playerID, err = NormalizeID("player id", playerID)
	if err != nil {
		return "", "", err
	}
	return gameID, playerID, nil
}

// entryResult maps a single-entry repository error onto the service result.
func entryResult(err error) (results.OperationResult[bool, error], error) {
	if err == nil {
		return results.SuccessResult[bool, error](true), nil
	}
	if errors.Is(err, scoredb.ErrNotFound) {
		return results.FailureResult[bool, error](ErrEntryNotFound), nil
	}
	return results.OperationResult[bool, error]{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
