package scoreevents

import "time"

// Stream names
const (
	LeaderboardStreamName = "leaderboard"
)

// Leaderboard events
const (
	// BestScoreRaisedV1 is published after a submission becomes a new personal best.
	BestScoreRaisedV1 = "leaderboard.best_score.raised.v1"
	// GameResetV1 is published after an administrator resets a game.
	GameResetV1 = "leaderboard.game.reset.v1"
)

// BestScoreRaisedPayloadV1 describes a new personal best.
type BestScoreRaisedPayloadV1 struct {
	PlayerID  string    `json:"player_id"`
	GameID    string    `json:"game_id"`
	Score     int64     `json:"score"`
	Submitted int64     `json:"submitted"`
	RaisedAt  time.Time `json:"raised_at"`
}

// GameResetPayloadV1 describes an administrative reset of a game's leaderboard.
type GameResetPayloadV1 struct {
	GameID  string    `json:"game_id"`
	Deleted int       `json:"deleted"`
	ResetAt time.Time `json:"reset_at"`
}
