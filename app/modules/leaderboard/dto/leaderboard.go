package leaderboarddto

import "time"

// LeaderboardEntry is one ranked row of a leaderboard.
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	PlayerID  string    `json:"playerId"`
	Score     int64     `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
	Flagged   bool      `json:"flagged,omitempty"`
}

// TopNResponse is the head of a game's leaderboard.
type TopNResponse struct {
	GameID       string             `json:"game"`
	Entries      []LeaderboardEntry `json:"leaderboard"`
	Total        int                `json:"total"`
	TotalPlayers int                `json:"totalPlayers"`
}

// PlayerStanding is a player's position in one game. Rank is 0 when Found is false.
type PlayerStanding struct {
	GameID       string    `json:"game"`
	PlayerID     string    `json:"playerId"`
	Found        bool      `json:"found"`
	Rank         int       `json:"rank,omitempty"`
	Score        int64     `json:"score,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
	TotalPlayers int       `json:"totalPlayers"`
}

// PersonalBest is a player's best score in one game.
type PersonalBest struct {
	GameID    string    `json:"game"`
	PlayerID  string    `json:"playerId"`
	Exists    bool      `json:"exists"`
	Score     int64     `json:"score"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
	Flagged   bool      `json:"flagged,omitempty"`
}

// GamesResponse lists the games with at least one best score.
type GamesResponse struct {
	Games []string `json:"games"`
	Total int      `json:"total"`
}

// SubmissionQuery filters the recent-submissions view. A nil Limit selects
// the default page size.
type SubmissionQuery struct {
	PlayerID string
	GameID   string
	Limit    *int
}

// Submission is one logged submission.
type Submission struct {
	ID                string    `json:"id"`
	PlayerID          string    `json:"playerId"`
	GameID            string    `json:"game"`
	SubmittedScore    int64     `json:"submittedScore"`
	AcceptedAsNewBest bool      `json:"acceptedAsNewBest"`
	StoredScore       int64     `json:"storedScore"`
	CreatedAt         time.Time `json:"createdAt"`
}

// SubmissionsResponse is the recent-activity view.
type SubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
	Total       int          `json:"total"`
}
