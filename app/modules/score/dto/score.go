package scoredto

// SubmitScoreRequest is the body of a score submission. Score is decoded
// loosely and validated by the service.
type SubmitScoreRequest struct {
	Game  string `json:"game"`
	Score any    `json:"score"`
}

// SubmitScoreResponse confirms a submission.
type SubmitScoreResponse struct {
	StoredScore int64  `json:"storedScore"`
	WasImproved bool   `json:"wasImproved"`
	Message     string `json:"message"`
}

// FlagEntryRequest marks or clears a leaderboard entry.
type FlagEntryRequest struct {
	Flagged *bool  `json:"flagged"`
	Reason  string `json:"reason,omitempty"`
}

// ResetGameResponse reports how many best scores were removed.
type ResetGameResponse struct {
	GameID  string `json:"game"`
	Deleted int    `json:"deleted"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Confirmed *bool  `json:"confirmed,omitempty"`
}
