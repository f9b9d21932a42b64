package leaderboardservice

import "errors"

// Domain errors for the leaderboard query side.
var (
	// ErrInvalidArgument indicates a malformed game id, player id or limit.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable indicates the score store could not answer.
	ErrStorageUnavailable = errors.New("score storage unavailable")
)
