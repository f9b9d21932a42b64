package leaderboardservice

import (
	"context"
	"sync"
	"time"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Score Reader
// ------------------------

// FakeScoreReader records calls and serves data from an in-memory store
// unless a Func override is set.
type FakeScoreReader struct {
	mu    sync.Mutex
	trace []string
	store *scoredb.MemoryRepository

	GetFunc                   func(ctx context.Context, db bun.IDB, playerID, gameID string) (*scoredb.BestScore, error)
	ListBestScoresForGameFunc func(ctx context.Context, db bun.IDB, gameID string) ([]scoredb.BestScore, error)
	ListTopBestScoresFunc     func(ctx context.Context, db bun.IDB, gameID string, limit int) ([]scoredb.BestScore, error)
	CountAheadFunc            func(ctx context.Context, db bun.IDB, gameID, playerID string, score int64, updatedAt time.Time) (int, error)
	CountForGameFunc          func(ctx context.Context, db bun.IDB, gameID string) (int, error)
	ListGamesFunc             func(ctx context.Context, db bun.IDB) ([]string, error)
	ListRecentSubmissionsFunc func(ctx context.Context, db bun.IDB, filter scoredb.SubmissionFilter) ([]scoredb.SubmissionEvent, error)
}

func NewFakeScoreReader() *FakeScoreReader {
	return &FakeScoreReader{
		trace: []string{},
		store: scoredb.NewMemoryRepository(scoredb.WithClock(newTickingClock())),
	}
}

func (f *FakeScoreReader) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// seed raises scores in order, so earlier calls get earlier timestamps.
func (f *FakeScoreReader) seed(gameID string, entries ...seedEntry) {
	for _, e := range entries {
		_, _, _ = f.store.RaiseIfHigher(context.Background(), nil, e.player, gameID, e.score)
	}
}

type seedEntry struct {
	player string
	score  int64
}

func (f *FakeScoreReader) Get(ctx context.Context, db bun.IDB, playerID, gameID string) (*scoredb.BestScore, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, playerID, gameID)
	}
	return f.store.Get(ctx, db, playerID, gameID)
}

func (f *FakeScoreReader) ListBestScoresForGame(ctx context.Context, db bun.IDB, gameID string) ([]scoredb.BestScore, error) {
	f.record("ListBestScoresForGame")
	if f.ListBestScoresForGameFunc != nil {
		return f.ListBestScoresForGameFunc(ctx, db, gameID)
	}
	return f.store.ListBestScoresForGame(ctx, db, gameID)
}

func (f *FakeScoreReader) ListTopBestScores(ctx context.Context, db bun.IDB, gameID string, limit int) ([]scoredb.BestScore, error) {
	f.record("ListTopBestScores")
	if f.ListTopBestScoresFunc != nil {
		return f.ListTopBestScoresFunc(ctx, db, gameID, limit)
	}
	return f.store.ListTopBestScores(ctx, db, gameID, limit)
}

func (f *FakeScoreReader) CountAhead(ctx context.Context, db bun.IDB, gameID, playerID string, score int64, updatedAt time.Time) (int, error) {
	f.record("CountAhead")
	if f.CountAheadFunc != nil {
		return f.CountAheadFunc(ctx, db, gameID, playerID, score, updatedAt)
	}
	return f.store.CountAhead(ctx, db, gameID, playerID, score, updatedAt)
}

func (f *FakeScoreReader) CountForGame(ctx context.Context, db bun.IDB, gameID string) (int, error) {
	f.record("CountForGame")
	if f.CountForGameFunc != nil {
		return f.CountForGameFunc(ctx, db, gameID)
	}
	return f.store.CountForGame(ctx, db, gameID)
}

func (f *FakeScoreReader) ListGames(ctx context.Context, db bun.IDB) ([]string, error) {
	f.record("ListGames")
	if f.ListGamesFunc != nil {
		return f.ListGamesFunc(ctx, db)
	}
	return f.store.ListGames(ctx, db)
}

func (f *FakeScoreReader) ListRecentSubmissions(ctx context.Context, db bun.IDB, filter scoredb.SubmissionFilter) ([]scoredb.SubmissionEvent, error) {
	f.record("ListRecentSubmissions")
	if f.ListRecentSubmissionsFunc != nil {
		return f.ListRecentSubmissionsFunc(ctx, db, filter)
	}
	return f.store.ListRecentSubmissions(ctx, db, filter)
}

// --- Accessors for assertions ---

func (f *FakeScoreReader) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ ScoreReader = (*FakeScoreReader)(nil)

var clockStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTickingClock returns a clock that advances one second per call.
func newTickingClock() func() time.Time {
	var mu sync.Mutex
	t := clockStart
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
