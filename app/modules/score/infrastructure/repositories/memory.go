package scoredb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type memoryKey struct {
	playerID string
	gameID   string
}

// MemoryRepository is an in-process Repository used when no database is
// configured and in tests. Each call holds the lock only for map access.
type MemoryRepository struct {
	mu          sync.RWMutex
	bests       map[memoryKey]*BestScore
	submissions []SubmissionEvent
	now         func() time.Time
}

// MemoryOption configures a MemoryRepository.
type MemoryOption func(*MemoryRepository)

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryRepository) {
		m.now = now
	}
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	m := &MemoryRepository{
		bests: make(map[memoryKey]*BestScore),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) RaiseIfHigher(ctx context.Context, _ bun.IDB, playerID, gameID string, candidate int64) (BestScore, bool, error) {
	if err := ctx.Err(); err != nil {
		return BestScore{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{playerID: playerID, gameID: gameID}
	existing, ok := m.bests[key]
	if !ok {
		now := m.now()
		created := &BestScore{
			PlayerID:  playerID,
			GameID:    gameID,
			Score:     candidate,
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.bests[key] = created
		return *created, true, nil
	}
	if candidate > existing.Score {
		existing.Score = candidate
		existing.UpdatedAt = m.now()
		return *existing, true, nil
	}
	return *existing, false, nil
}

func (m *MemoryRepository) Get(ctx context.Context, _ bun.IDB, playerID, gameID string) (*BestScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	existing, ok := m.bests[memoryKey{playerID: playerID, gameID: gameID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *existing
	return &cp, nil
}

func (m *MemoryRepository) ListBestScoresForGame(ctx context.Context, _ bun.IDB, gameID string) ([]BestScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []BestScore
	for k, v := range m.bests {
		if k.gameID == gameID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListTopBestScores(ctx context.Context, db bun.IDB, gameID string, limit int) ([]BestScore, error) {
	all, err := m.ListBestScoresForGame(ctx, db, gameID)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.PlayerID < b.PlayerID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryRepository) CountAhead(ctx context.Context, _ bun.IDB, gameID, playerID string, score int64, updatedAt time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for k, v := range m.bests {
		if k.gameID != gameID || k.playerID == playerID {
			continue
		}
		if v.Score > score || (v.Score == score && v.UpdatedAt.Before(updatedAt)) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) CountForGame(ctx context.Context, _ bun.IDB, gameID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for k := range m.bests {
		if k.gameID == gameID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) ListGames(ctx context.Context, _ bun.IDB) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	games := []string{}
	for k := range m.bests {
		if _, ok := seen[k.gameID]; ok {
			continue
		}
		seen[k.gameID] = struct{}{}
		games = append(games, k.gameID)
	}
	sort.Strings(games)
	return games, nil
}

func (m *MemoryRepository) ResetGame(ctx context.Context, _ bun.IDB, gameID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for k := range m.bests {
		if k.gameID == gameID {
			delete(m.bests, k)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryRepository) DeleteEntry(ctx context.Context, _ bun.IDB, playerID, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{playerID: playerID, gameID: gameID}
	if _, ok := m.bests[key]; !ok {
		return ErrNotFound
	}
	delete(m.bests, key)
	return nil
}

func (m *MemoryRepository) FlagEntry(ctx context.Context, _ bun.IDB, playerID, gameID, reason string, flagged bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.bests[memoryKey{playerID: playerID, gameID: gameID}]
	if !ok {
		return ErrNotFound
	}
	existing.Flagged = flagged
	existing.FlagReason = ""
	if flagged {
		existing.FlagReason = reason
	}
	return nil
}

func (m *MemoryRepository) AppendSubmission(ctx context.Context, _ bun.IDB, event *SubmissionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = m.now()
	}
	m.submissions = append(m.submissions, *event)
	return nil
}

func (m *MemoryRepository) ListRecentSubmissions(ctx context.Context, _ bun.IDB, filter SubmissionFilter) ([]SubmissionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []SubmissionEvent{}
	for i := len(m.submissions) - 1; i >= 0; i-- {
		e := m.submissions[i]
		if filter.PlayerID != "" && e.PlayerID != filter.PlayerID {
			continue
		}
		if filter.GameID != "" && e.GameID != filter.GameID {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
