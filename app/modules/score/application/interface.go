package scoreservice

import (
	"context"
)

// Service defines the write side of the leaderboard: submissions and
// administrative corrections.
type Service interface {
	// Submit records a score and raises the player's best when it is higher.
	Submit(ctx context.Context, playerID, gameID string, raw any) (*SubmissionResult, error)

	// ResetGame removes every best score of a game.
	ResetGame(ctx context.Context, gameID string) (int, error)

	// DeleteEntry removes one player's best score in a game.
	DeleteEntry(ctx context.Context, gameID, playerID string) error

	// FlagEntry marks or clears a best score as suspicious.
	FlagEntry(ctx context.Context, gameID, playerID, reason string, flagged bool) error
}

// SubmissionResult is the outcome of a confirmed submission.
type SubmissionResult struct {
	// StoredScore is the player's best after the call.
	StoredScore int64
	// WasImproved is true when this submission became the new best.
	WasImproved bool
}
