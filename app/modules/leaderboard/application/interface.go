package leaderboardservice

import (
	"context"
	"time"

	leaderboarddto "github.com/Gr33nOps/VTcade/app/modules/leaderboard/dto"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Service defines the read side of the leaderboard.
type Service interface {
	// GetTopN returns the first n standings of a game.
	GetTopN(ctx context.Context, gameID string, n int) (*leaderboarddto.TopNResponse, error)

	// GetPlayerStanding returns a player's rank in a game. An absent player is not an error.
	GetPlayerStanding(ctx context.Context, gameID, playerID string) (*leaderboarddto.PlayerStanding, error)

	// GetPersonalBest returns a player's best score in a game.
	GetPersonalBest(ctx context.Context, gameID, playerID string) (*leaderboarddto.PersonalBest, error)

	// ListGamesWithActivity returns the games that have at least one best score.
	ListGamesWithActivity(ctx context.Context) (*leaderboarddto.GamesResponse, error)

	// RecentSubmissions returns logged submissions, newest first.
	RecentSubmissions(ctx context.Context, query leaderboarddto.SubmissionQuery) (*leaderboarddto.SubmissionsResponse, error)

	// ExportGame renders a game's full leaderboard as an xlsx workbook.
	ExportGame(ctx context.Context, gameID string) ([]byte, error)

	// ProgressChart renders a player's submission history in a game as a PNG.
	ProgressChart(ctx context.Context, gameID, playerID string) ([]byte, error)
}

// ScoreReader is the read-only slice of the score store the leaderboard needs.
type ScoreReader interface {
	Get(ctx context.Context, db bun.IDB, playerID, gameID string) (*scoredb.BestScore, error)
	ListBestScoresForGame(ctx context.Context, db bun.IDB, gameID string) ([]scoredb.BestScore, error)
	ListTopBestScores(ctx context.Context, db bun.IDB, gameID string, limit int) ([]scoredb.BestScore, error)
	CountAhead(ctx context.Context, db bun.IDB, gameID, playerID string, score int64, updatedAt time.Time) (int, error)
	CountForGame(ctx context.Context, db bun.IDB, gameID string) (int, error)
	ListGames(ctx context.Context, db bun.IDB) ([]string, error)
	ListRecentSubmissions(ctx context.Context, db bun.IDB, filter scoredb.SubmissionFilter) ([]scoredb.SubmissionEvent, error)
}

var _ ScoreReader = (scoredb.Repository)(nil)
