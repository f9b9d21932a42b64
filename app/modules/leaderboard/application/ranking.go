package leaderboardservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	leaderboarddomain "github.com/Gr33nOps/VTcade/app/modules/leaderboard/domain"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// DefaultMaxTopN bounds TopN when no limit is configured.
const DefaultMaxTopN = 100

// RankingEngine computes ordering and ranks over the best scores of a game.
// Multi-read answers run in one read-only REPEATABLE READ transaction so
// they describe a single state of the store.
type RankingEngine struct {
	repo    ScoreReader
	db      *bun.DB
	maxTopN int
}

// NewRankingEngine creates a RankingEngine. db may be nil, in which case
// reads go straight to the repository's default handle.
func NewRankingEngine(repo ScoreReader, db *bun.DB, maxTopN int) *RankingEngine {
	if maxTopN <= 0 {
		maxTopN = DefaultMaxTopN
	}
	return &RankingEngine{repo: repo, db: db, maxTopN: maxTopN}
}

// MaxTopN is the largest n accepted by TopN.
func (e *RankingEngine) MaxTopN() int {
	return e.maxTopN
}

// TopN returns the first n standings of a game, best first.
func (e *RankingEngine) TopN(ctx context.Context, gameID string, n int) ([]leaderboarddomain.Standing, error) {
	if err := e.checkN(n); err != nil {
		return nil, err
	}
	var standings []leaderboarddomain.Standing
	err := e.readConsistent(ctx, func(ctx context.Context, db bun.IDB) error {
		var err error
		standings, err = e.topN(ctx, db, gameID, n)
		return err
	})
	return standings, err
}

// RankOf returns a player's standing in a game, or nil when the player has no record.
func (e *RankingEngine) RankOf(ctx context.Context, gameID, playerID string) (*leaderboarddomain.Standing, error) {
	var standing *leaderboarddomain.Standing
	err := e.readConsistent(ctx, func(ctx context.Context, db bun.IDB) error {
		var err error
		standing, err = e.rankOf(ctx, db, gameID, playerID)
		return err
	})
	return standing, err
}

// TotalPlayers counts the players with a best score in a game.
func (e *RankingEngine) TotalPlayers(ctx context.Context, gameID string) (int, error) {
	total, err := e.repo.CountForGame(ctx, nil, gameID)
	if err != nil {
		return 0, storageErr(err)
	}
	return total, nil
}

// TopNWithTotal returns TopN and TotalPlayers read from the same snapshot.
func (e *RankingEngine) TopNWithTotal(ctx context.Context, gameID string, n int) ([]leaderboarddomain.Standing, int, error) {
	if err := e.checkN(n); err != nil {
		return nil, 0, err
	}
	var (
		standings []leaderboarddomain.Standing
		total     int
	)
	err := e.readConsistent(ctx, func(ctx context.Context, db bun.IDB) error {
		var err error
		if standings, err = e.topN(ctx, db, gameID, n); err != nil {
			return err
		}
		total, err = e.totalPlayers(ctx, db, gameID)
		return err
	})
	return standings, total, err
}

// StandingWithTotal returns RankOf and TotalPlayers read from the same snapshot.
func (e *RankingEngine) StandingWithTotal(ctx context.Context, gameID, playerID string) (*leaderboarddomain.Standing, int, error) {
	var (
		standing *leaderboarddomain.Standing
		total    int
	)
	err := e.readConsistent(ctx, func(ctx context.Context, db bun.IDB) error {
		var err error
		if standing, err = e.rankOf(ctx, db, gameID, playerID); err != nil {
			return err
		}
		total, err = e.totalPlayers(ctx, db, gameID)
		return err
	})
	return standing, total, err
}

// Snapshot ranks every best score of a game by sorting the full set.
func (e *RankingEngine) Snapshot(ctx context.Context, gameID string) ([]leaderboarddomain.Standing, error) {
	bests, err := e.repo.ListBestScoresForGame(ctx, nil, gameID)
	if err != nil {
		return nil, storageErr(err)
	}
	return leaderboarddomain.Rank(toEntries(bests)), nil
}

func (e *RankingEngine) topN(ctx context.Context, db bun.IDB, gameID string, n int) ([]leaderboarddomain.Standing, error) {
	bests, err := e.repo.ListTopBestScores(ctx, db, gameID, n)
	if err != nil {
		return nil, storageErr(err)
	}
	// Every entry ahead of a listed entry is itself listed, so ranking the
	// prefix yields the same ranks as ranking the whole game.
	return leaderboarddomain.Top(toEntries(bests), n), nil
}

func (e *RankingEngine) rankOf(ctx context.Context, db bun.IDB, gameID, playerID string) (*leaderboarddomain.Standing, error) {
	best, err := e.repo.Get(ctx, db, playerID, gameID)
	if err != nil {
		if errors.Is(err, scoredb.ErrNotFound) {
			return nil, nil
		}
		return nil, storageErr(err)
	}

	ahead, err := e.repo.CountAhead(ctx, db, gameID, playerID, best.Score, best.UpdatedAt)
	if err != nil {
		return nil, storageErr(err)
	}

	return &leaderboarddomain.Standing{
		Rank:      leaderboarddomain.RankFromCount(ahead),
		PlayerID:  best.PlayerID,
		Score:     best.Score,
		UpdatedAt: best.UpdatedAt,
		Flagged:   best.Flagged,
	}, nil
}

func (e *RankingEngine) totalPlayers(ctx context.Context, db bun.IDB, gameID string) (int, error) {
	total, err := e.repo.CountForGame(ctx, db, gameID)
	if err != nil {
		return 0, storageErr(err)
	}
	return total, nil
}

func (e *RankingEngine) checkN(n int) error {
	if n < 1 || n > e.maxTopN {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, e.maxTopN)
	}
	return nil
}

// readConsistent runs fn against one snapshot of the store.
func (e *RankingEngine) readConsistent(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if e.db == nil {
		return fn(ctx, nil)
	}
	err := e.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func toEntries(bests []scoredb.BestScore) []leaderboarddomain.Entry {
	entries := make([]leaderboarddomain.Entry, len(bests))
	for i, b := range bests {
		entries[i] = leaderboarddomain.Entry{
			PlayerID:  b.PlayerID,
			Score:     b.Score,
			UpdatedAt: b.UpdatedAt,
			Flagged:   b.Flagged,
		}
	}
	return entries
}

func storageErr(err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
