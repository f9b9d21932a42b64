package scoreservice

import (
	"context"
	"errors"
	"sync"
	"time"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Score Repo
// ------------------------

// FakeScoreRepo records every call and delegates to an in-memory store unless
// a Func override is set.
type FakeScoreRepo struct {
	mu    sync.Mutex
	trace []string
	store *scoredb.MemoryRepository

	RaiseIfHigherFunc    func(ctx context.Context, db bun.IDB, playerID, gameID string, candidate int64) (scoredb.BestScore, bool, error)
	AppendSubmissionFunc func(ctx context.Context, db bun.IDB, event *scoredb.SubmissionEvent) error
	ResetGameFunc        func(ctx context.Context, db bun.IDB, gameID string) (int, error)
	DeleteEntryFunc      func(ctx context.Context, db bun.IDB, playerID, gameID string) error
	FlagEntryFunc        func(ctx context.Context, db bun.IDB, playerID, gameID, reason string, flagged bool) error
}

func NewFakeScoreRepo() *FakeScoreRepo {
	return &FakeScoreRepo{
		trace: []string{},
		store: scoredb.NewMemoryRepository(scoredb.WithClock(newTickingClock())),
	}
}

func (f *FakeScoreRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeScoreRepo) RaiseIfHigher(ctx context.Context, db bun.IDB, playerID, gameID string, candidate int64) (scoredb.BestScore, bool, error) {
	f.record("RaiseIfHigher")
	if f.RaiseIfHigherFunc != nil {
		return f.RaiseIfHigherFunc(ctx, db, playerID, gameID, candidate)
	}
	return f.store.RaiseIfHigher(ctx, db, playerID, gameID, candidate)
}

func (f *FakeScoreRepo) Get(ctx context.Context, db bun.IDB, playerID, gameID string) (*scoredb.BestScore, error) {
	f.record("Get")
	return f.store.Get(ctx, db, playerID, gameID)
}

func (f *FakeScoreRepo) ListBestScoresForGame(ctx context.Context, db bun.IDB, gameID string) ([]scoredb.BestScore, error) {
	f.record("ListBestScoresForGame")
	return f.store.ListBestScoresForGame(ctx, db, gameID)
}

func (f *FakeScoreRepo) ListTopBestScores(ctx context.Context, db bun.IDB, gameID string, limit int) ([]scoredb.BestScore, error) {
	f.record("ListTopBestScores")
	return f.store.ListTopBestScores(ctx, db, gameID, limit)
}

func (f *FakeScoreRepo) CountAhead(ctx context.Context, db bun.IDB, gameID, playerID string, score int64, updatedAt time.Time) (int, error) {
	f.record("CountAhead")
	return f.store.CountAhead(ctx, db, gameID, playerID, score, updatedAt)
}

func (f *FakeScoreRepo) CountForGame(ctx context.Context, db bun.IDB, gameID string) (int, error) {
	f.record("CountForGame")
	return f.store.CountForGame(ctx, db, gameID)
}

func (f *FakeScoreRepo) ListGames(ctx context.Context, db bun.IDB) ([]string, error) {
	f.record("ListGames")
	return f.store.ListGames(ctx, db)
}

func (f *FakeScoreRepo) ResetGame(ctx context.Context, db bun.IDB, gameID string) (int, error) {
	f.record("ResetGame")
	if f.ResetGameFunc != nil {
		return f.ResetGameFunc(ctx, db, gameID)
	}
	return f.store.ResetGame(ctx, db, gameID)
}

func (f *FakeScoreRepo) DeleteEntry(ctx context.Context, db bun.IDB, playerID, gameID string) error {
	f.record("DeleteEntry")
	if f.DeleteEntryFunc != nil {
		return f.DeleteEntryFunc(ctx, db, playerID, gameID)
	}
	return f.store.DeleteEntry(ctx, db, playerID, gameID)
}

func (f *FakeScoreRepo) FlagEntry(ctx context.Context, db bun.IDB, playerID, gameID, reason string, flagged bool) error {
	f.record("FlagEntry")
	if f.FlagEntryFunc != nil {
		return f.FlagEntryFunc(ctx, db, playerID, gameID, reason, flagged)
	}
	return f.store.FlagEntry(ctx, db, playerID, gameID, reason, flagged)
}

func (f *FakeScoreRepo) AppendSubmission(ctx context.Context, db bun.IDB, event *scoredb.SubmissionEvent) error {
	f.record("AppendSubmission")
	if f.AppendSubmissionFunc != nil {
		return f.AppendSubmissionFunc(ctx, db, event)
	}
	return f.store.AppendSubmission(ctx, db, event)
}

func (f *FakeScoreRepo) ListRecentSubmissions(ctx context.Context, db bun.IDB, filter scoredb.SubmissionFilter) ([]scoredb.SubmissionEvent, error) {
	f.record("ListRecentSubmissions")
	return f.store.ListRecentSubmissions(ctx, db, filter)
}

// --- Accessors for assertions ---

func (f *FakeScoreRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ scoredb.Repository = (*FakeScoreRepo)(nil)

// newTickingClock returns a clock that advances one second per call.
func newTickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// ------------------------
// Fake Catalog / Publisher
// ------------------------

type FakeCatalog struct {
	known map[string]bool
	err   error
}

func (c *FakeCatalog) IsKnownGame(_ context.Context, gameID string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.known[gameID], nil
}

type FailingPublisher struct{}

func (FailingPublisher) Publish(string, ...*message.Message) error {
	return errors.New("nats: no responders available")
}

func (FailingPublisher) Close() error { return nil }

var _ message.Publisher = FailingPublisher{}
