package scoredb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BestScore is the single best-score record of a player in a game.
// Score never decreases; UpdatedAt is the time of the last improvement and is
// taken from the database clock.
type BestScore struct {
	bun.BaseModel `bun:"table:best_scores,alias:bs"`

	PlayerID   string    `bun:"player_id,pk"`
	GameID     string    `bun:"game_id,pk"`
	Score      int64     `bun:"score,notnull"`
	Flagged    bool      `bun:"flagged,notnull,default:false"`
	FlagReason string    `bun:"flag_reason,nullzero"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// SubmissionEvent is one raw submission as received. Immutable once written
// and never used for ranking.
type SubmissionEvent struct {
	bun.BaseModel `bun:"table:score_submissions,alias:ss"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	PlayerID          string    `bun:"player_id,notnull"`
	GameID            string    `bun:"game_id,notnull"`
	SubmittedScore    int64     `bun:"submitted_score,notnull"`
	AcceptedAsNewBest bool      `bun:"accepted_as_new_best,notnull"`
	StoredScore       int64     `bun:"stored_score,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*SubmissionEvent)(nil)

func (e *SubmissionEvent) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SubmissionFilter narrows ListRecentSubmissions. Empty fields match everything.
type SubmissionFilter struct {
	PlayerID string
	GameID   string
	Limit    int
}
