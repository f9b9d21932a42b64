package scoredb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// maxRaiseAttempts bounds the retries of RaiseIfHigher when the record is
// deleted between the rejected upsert and the follow-up read.
const maxRaiseAttempts = 3

// raiseQuery inserts or raises the best score in one statement. The conflict
// branch only fires when the candidate is strictly higher, so concurrent
// raises of the same key serialize on the row lock and never lose the maximum.
const raiseQuery = `
INSERT INTO best_scores (player_id, game_id, score, created_at, updated_at)
VALUES (?, ?, ?, clock_timestamp(), clock_timestamp())
ON CONFLICT (player_id, game_id) DO UPDATE
SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
WHERE best_scores.score < EXCLUDED.score
RETURNING *`

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new score repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// RaiseIfHigher creates or raises the best score of (playerID, gameID).
func (r *Impl) RaiseIfHigher(ctx context.Context, db bun.IDB, playerID, gameID string, candidate int64) (BestScore, bool, error) {
	db = r.resolveDB(db)

	for attempt := 0; attempt < maxRaiseAttempts; attempt++ {
		var raised BestScore
		err := db.NewRaw(raiseQuery, playerID, gameID, candidate).Scan(ctx, &raised)
		if err == nil {
			return raised, true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return BestScore{}, false, fmt.Errorf("failed to raise best score: %w", err)
		}

		// The conflict branch rejected the candidate; report the current best.
		existing, err := r.Get(ctx, db, playerID, gameID)
		if err == nil {
			return *existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return BestScore{}, false, fmt.Errorf("failed to read best score after rejected raise: %w", err)
		}
	}

	return BestScore{}, false, fmt.Errorf("failed to raise best score: record for %s/%s kept disappearing", playerID, gameID)
}

// Get retrieves the best-score record of a player in a game.
func (r *Impl) Get(ctx context.Context, db bun.IDB, playerID, gameID string) (*BestScore, error) {
	db = r.resolveDB(db)
	best := new(BestScore)
	err := db.NewSelect().
		Model(best).
		Where("player_id = ?", playerID).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get best score: %w", err)
	}
	return best, nil
}

// ListBestScoresForGame retrieves every best-score record of a game.
func (r *Impl) ListBestScoresForGame(ctx context.Context, db bun.IDB, gameID string) ([]BestScore, error) {
	db = r.resolveDB(db)
	var bests []BestScore
	err := db.NewSelect().
		Model(&bests).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list best scores: %w", err)
	}
	return bests, nil
}

// ListTopBestScores retrieves the leading records of a game in ranking order.
func (r *Impl) ListTopBestScores(ctx context.Context, db bun.IDB, gameID string, limit int) ([]BestScore, error) {
	db = r.resolveDB(db)
	var bests []BestScore
	err := db.NewSelect().
		Model(&bests).
		Where("game_id = ?", gameID).
		OrderExpr("score DESC, updated_at ASC, player_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list top best scores: %w", err)
	}
	return bests, nil
}

// CountAhead counts records of other players with a strictly higher score, or
// an equal score reached strictly earlier. The player's own row is excluded so
// a raise landing after the caller read (score, updatedAt) cannot count itself.
func (r *Impl) CountAhead(ctx context.Context, db bun.IDB, gameID, playerID string, score int64, updatedAt time.Time) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*BestScore)(nil)).
		Where("game_id = ?", gameID).
		Where("player_id <> ?", playerID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("score > ?", score).
				WhereOr("score = ? AND updated_at < ?", score, updatedAt)
		}).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count records ahead: %w", err)
	}
	return count, nil
}

// CountForGame counts the records of a game.
func (r *Impl) CountForGame(ctx context.Context, db bun.IDB, gameID string) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*BestScore)(nil)).
		Where("game_id = ?", gameID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// ListGames returns the distinct game ids that have at least one record.
func (r *Impl) ListGames(ctx context.Context, db bun.IDB) ([]string, error) {
	db = r.resolveDB(db)
	var games []string
	err := db.NewSelect().
		Model((*BestScore)(nil)).
		Distinct().
		Column("game_id").
		Order("game_id ASC").
		Scan(ctx, &games)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// ResetGame deletes every record of a game.
func (r *Impl) ResetGame(ctx context.Context, db bun.IDB, gameID string) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*BestScore)(nil)).
		Where("game_id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset game: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}

// DeleteEntry removes the record of one player in a game.
func (r *Impl) DeleteEntry(ctx context.Context, db bun.IDB, playerID, gameID string) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*BestScore)(nil)).
		Where("player_id = ?", playerID).
		Where("game_id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete best score: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// FlagEntry marks or unmarks a record as suspicious. The score is untouched.
func (r *Impl) FlagEntry(ctx context.Context, db bun.IDB, playerID, gameID, reason string, flagged bool) error {
	db = r.resolveDB(db)
	if !flagged {
		reason = ""
	}
	res, err := db.NewUpdate().
		Model((*BestScore)(nil)).
		Set("flagged = ?", flagged).
		Set("flag_reason = NULLIF(?, '')", reason).
		Where("player_id = ?", playerID).
		Where("game_id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to flag best score: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendSubmission inserts one submission event.
func (r *Impl) AppendSubmission(ctx context.Context, db bun.IDB, event *SubmissionEvent) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(event).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append submission: %w", err)
	}
	return nil
}

// ListRecentSubmissions returns logged submissions newest first.
func (r *Impl) ListRecentSubmissions(ctx context.Context, db bun.IDB, filter SubmissionFilter) ([]SubmissionEvent, error) {
	db = r.resolveDB(db)
	var events []SubmissionEvent
	q := db.NewSelect().Model(&events)
	if filter.PlayerID != "" {
		q = q.Where("player_id = ?", filter.PlayerID)
	}
	if filter.GameID != "" {
		q = q.Where("game_id = ?", filter.GameID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.OrderExpr("created_at DESC, id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list recent submissions: %w", err)
	}
	return events, nil
}
