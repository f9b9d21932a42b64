package scoreservice

import "errors"

// Domain errors for the score service.
// Handlers map them to client errors; everything else is a server error.
var (
	// ErrInvalidScore indicates the raw score is not a non-negative integer.
	ErrInvalidScore = errors.New("invalid score value")

	// ErrInvalidArgument indicates a malformed player or game id.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownGame indicates the game is not in the configured catalog.
	ErrUnknownGame = errors.New("unknown game")

	// ErrStorageUnavailable indicates the score store could not be reached in time.
	// The submission must be treated as not confirmed.
	ErrStorageUnavailable = errors.New("score storage unavailable")

	// ErrEntryNotFound indicates an administrative operation targeted a missing record.
	ErrEntryNotFound = errors.New("leaderboard entry not found")
)
