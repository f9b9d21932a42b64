package scoredb

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound reports a missing best-score record. Whether that is a failure
// is up to the caller.
var ErrNotFound = errors.New("best score not found")

// Repository defines the contract for best-score persistence.
// Every method accepts an optional bun.IDB; nil means the repository's default handle.
type Repository interface {
	// RaiseIfHigher atomically creates the record or raises it to candidate when
	// candidate is strictly greater. It returns the record as held after the call.
	RaiseIfHigher(ctx context.Context, db bun.IDB, playerID, gameID string, candidate int64) (best BestScore, improved bool, err error)

	// Get returns the best-score record, or ErrNotFound.
	Get(ctx context.Context, db bun.IDB, playerID, gameID string) (*BestScore, error)

	// ListBestScoresForGame returns every record of a game in no defined order.
	ListBestScoresForGame(ctx context.Context, db bun.IDB, gameID string) ([]BestScore, error)

	// ListTopBestScores returns the first limit records of a game in ranking order.
	ListTopBestScores(ctx context.Context, db bun.IDB, gameID string, limit int) ([]BestScore, error)

	// CountAhead counts the records of players other than playerID that rank
	// strictly ahead of (score, updatedAt).
	CountAhead(ctx context.Context, db bun.IDB, gameID, playerID string, score int64, updatedAt time.Time) (int, error)

	// CountForGame counts the records of a game.
	CountForGame(ctx context.Context, db bun.IDB, gameID string) (int, error)

	// ListGames returns the distinct game ids with at least one record, ascending.
	ListGames(ctx context.Context, db bun.IDB) ([]string, error)

	// ResetGame deletes every record of a game and returns how many were removed.
	ResetGame(ctx context.Context, db bun.IDB, gameID string) (int, error)

	// DeleteEntry removes one record, or returns ErrNotFound.
	DeleteEntry(ctx context.Context, db bun.IDB, playerID, gameID string) error

	// FlagEntry sets or clears the administrative flag of a record.
	FlagEntry(ctx context.Context, db bun.IDB, playerID, gameID, reason string, flagged bool) error

	// AppendSubmission writes one submission to the append-only log.
	AppendSubmission(ctx context.Context, db bun.IDB, event *SubmissionEvent) error

	// ListRecentSubmissions returns logged submissions newest first.
	ListRecentSubmissions(ctx context.Context, db bun.IDB, filter SubmissionFilter) ([]SubmissionEvent, error)
}
