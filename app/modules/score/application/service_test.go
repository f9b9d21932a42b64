package scoreservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	scoreevents "github.com/Gr33nOps/VTcade/app/modules/score/domain/events"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo scoredb.Repository, opts ...Option) *ScoreService {
	return NewScoreService(
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		opts...,
	)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name     string
		playerID string
		gameID   string
		raw      any
		wantErr  error
	}{
		{name: "negative score", playerID: "p1", gameID: "snake", raw: -1, wantErr: ErrInvalidScore},
		{name: "non-numeric string", playerID: "p1", gameID: "snake", raw: "abc", wantErr: ErrInvalidScore},
		{name: "fractional score", playerID: "p1", gameID: "snake", raw: 12.5, wantErr: ErrInvalidScore},
		{name: "missing score", playerID: "p1", gameID: "snake", raw: nil, wantErr: ErrInvalidScore},
		{name: "boolean score", playerID: "p1", gameID: "snake", raw: true, wantErr: ErrInvalidScore},
		{name: "blank player", playerID: "   ", gameID: "snake", raw: 10, wantErr: ErrInvalidArgument},
		{name: "blank game", playerID: "p1", gameID: "", raw: 10, wantErr: ErrInvalidArgument},
		{name: "game id too long", playerID: "p1", gameID: "g123456789g123456789g123456789g123456789g123456789x", raw: 10, wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeScoreRepo()
			svc := newTestService(repo)

			result, err := svc.Submit(context.Background(), tt.playerID, tt.gameID, tt.raw)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotContains(t, repo.Trace(), "RaiseIfHigher", "invalid input must never reach the store")
		})
	}
}

func TestSubmit_InvalidScoreLeavesRecordUntouched(t *testing.T) {
	repo := NewFakeScoreRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "p1", "snake", 50)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "p1", "snake", -1)
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = svc.Submit(ctx, "p1", "snake", "abc")
	assert.ErrorIs(t, err, ErrInvalidScore)

	best, err := repo.Get(ctx, nil, "p1", "snake")
	require.NoError(t, err)
	assert.Equal(t, int64(50), best.Score)
}

func TestSubmit_Monotonic(t *testing.T) {
	repo := NewFakeScoreRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	steps := []struct {
		raw          any
		wantStored   int64
		wantImproved bool
	}{
		{raw: 40, wantStored: 40, wantImproved: true},
		{raw: "25", wantStored: 40, wantImproved: false},
		{raw: json.Number("60"), wantStored: 60, wantImproved: true},
		{raw: 60.0, wantStored: 60, wantImproved: false},
		{raw: 10, wantStored: 60, wantImproved: false},
	}

	for i, step := range steps {
		result, err := svc.Submit(ctx, " p1 ", "snake", step.raw)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.wantStored, result.StoredScore, "step %d", i)
		assert.Equal(t, step.wantImproved, result.WasImproved, "step %d", i)
	}

	best, err := repo.Get(ctx, nil, "p1", "snake")
	require.NoError(t, err)
	assert.Equal(t, int64(60), best.Score, "ids are trimmed before reaching the store")
}

func TestSubmit_ZeroIsAValidFirstScore(t *testing.T) {
	svc := newTestService(NewFakeScoreRepo())

	result, err := svc.Submit(context.Background(), "p1", "snake", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.StoredScore)
	assert.True(t, result.WasImproved)
}

func TestSubmit_ConcurrentSubmissionsKeepMaximum(t *testing.T) {
	repo := NewFakeScoreRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	scores := []int{50, 90, 100}
	const rounds = 30

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		for _, s := range scores {
			wg.Add(1)
			go func(score int) {
				defer wg.Done()
				_, err := svc.Submit(ctx, "p1", "snake", score)
				assert.NoError(t, err)
			}(s)
		}
	}
	wg.Wait()

	best, err := repo.Get(ctx, nil, "p1", "snake")
	require.NoError(t, err)
	assert.Equal(t, int64(100), best.Score)

	improvements := 0
	events, err := repo.ListRecentSubmissions(ctx, nil, scoredb.SubmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, events, rounds*len(scores))
	for _, e := range events {
		if e.AcceptedAsNewBest {
			improvements++
		}
	}
	assert.GreaterOrEqual(t, improvements, 1)
	assert.LessOrEqual(t, improvements, len(scores))
}

func TestSubmit_StorageFailure(t *testing.T) {
	repo := NewFakeScoreRepo()
	repo.RaiseIfHigherFunc = func(ctx context.Context, db bun.IDB, playerID, gameID string, candidate int64) (scoredb.BestScore, bool, error) {
		return scoredb.BestScore{}, false, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	}
	svc := newTestService(repo)

	result, err := svc.Submit(context.Background(), "p1", "snake", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, []string{"RaiseIfHigher"}, repo.Trace(), "nothing is logged for an unconfirmed submission")
}

func TestSubmit_StoreTimeout(t *testing.T) {
	repo := NewFakeScoreRepo()
	repo.RaiseIfHigherFunc = func(ctx context.Context, db bun.IDB, playerID, gameID string, candidate int64) (scoredb.BestScore, bool, error) {
		<-ctx.Done()
		return scoredb.BestScore{}, false, ctx.Err()
	}
	svc := newTestService(repo, WithStoreTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := svc.Submit(context.Background(), "p1", "snake", 10)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSubmit_PanicIsRecovered(t *testing.T) {
	repo := NewFakeScoreRepo()
	repo.RaiseIfHigherFunc = func(ctx context.Context, db bun.IDB, playerID, gameID string, candidate int64) (scoredb.BestScore, bool, error) {
		panic("boom")
	}
	svc := newTestService(repo)

	result, err := svc.Submit(context.Background(), "p1", "snake", 10)
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "panic in Submit")
}

func TestSubmit_SubmissionLog(t *testing.T) {
	t.Run("records every confirmed submission", func(t *testing.T) {
		repo := NewFakeScoreRepo()
		svc := newTestService(repo)
		ctx := context.Background()

		_, err := svc.Submit(ctx, "p1", "snake", 40)
		require.NoError(t, err)
		_, err = svc.Submit(ctx, "p1", "snake", 25)
		require.NoError(t, err)

		events, err := repo.ListRecentSubmissions(ctx, nil, scoredb.SubmissionFilter{PlayerID: "p1"})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, int64(25), events[0].SubmittedScore)
		assert.False(t, events[0].AcceptedAsNewBest)
		assert.Equal(t, int64(40), events[0].StoredScore)
		assert.True(t, events[1].AcceptedAsNewBest)
	})

	t.Run("log failure does not change the result", func(t *testing.T) {
		repo := NewFakeScoreRepo()
		repo.AppendSubmissionFunc = func(ctx context.Context, db bun.IDB, event *scoredb.SubmissionEvent) error {
			return errors.New("disk full")
		}
		svc := newTestService(repo)

		result, err := svc.Submit(context.Background(), "p1", "snake", 40)
		require.NoError(t, err)
		assert.Equal(t, &SubmissionResult{StoredScore: 40, WasImproved: true}, result)
		assert.Equal(t, []string{"RaiseIfHigher", "AppendSubmission"}, repo.Trace())
	})

	t.Run("disabled log is skipped", func(t *testing.T) {
		repo := NewFakeScoreRepo()
		svc := newTestService(repo, WithSubmissionLog(false))

		_, err := svc.Submit(context.Background(), "p1", "snake", 40)
		require.NoError(t, err)
		assert.Equal(t, []string{"RaiseIfHigher"}, repo.Trace())
	})
}

func TestSubmit_Catalog(t *testing.T) {
	catalog := &FakeCatalog{known: map[string]bool{"snake": true}}

	t.Run("known game", func(t *testing.T) {
		svc := newTestService(NewFakeScoreRepo(), WithCatalog(catalog))
		_, err := svc.Submit(context.Background(), "p1", "snake", 1)
		assert.NoError(t, err)
	})

	t.Run("unknown game", func(t *testing.T) {
		repo := NewFakeScoreRepo()
		svc := newTestService(repo, WithCatalog(catalog))
		_, err := svc.Submit(context.Background(), "p1", "pong", 1)
		assert.ErrorIs(t, err, ErrUnknownGame)
		assert.Empty(t, repo.Trace())
	})

	t.Run("catalog failure", func(t *testing.T) {
		svc := newTestService(NewFakeScoreRepo(), WithCatalog(&FakeCatalog{err: errors.New("catalog down")}))
		_, err := svc.Submit(context.Background(), "p1", "snake", 1)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnknownGame)
	})

	t.Run("static catalog", func(t *testing.T) {
		ctx := context.Background()
		empty := NewStaticCatalog(nil)
		ok, err := empty.IsKnownGame(ctx, "anything")
		require.NoError(t, err)
		assert.True(t, ok)

		c := NewStaticCatalog([]string{" snake ", ""})
		ok, _ = c.IsKnownGame(ctx, "snake")
		assert.True(t, ok)
		ok, _ = c.IsKnownGame(ctx, "pong")
		assert.False(t, ok)
	})
}

func TestSubmit_PublishesBestScoreRaised(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10}, watermill.NopLogger{})
	defer pubSub.Close()

	msgs, err := pubSub.Subscribe(context.Background(), scoreevents.BestScoreRaisedV1)
	require.NoError(t, err)

	repo := NewFakeScoreRepo()
	svc := newTestService(repo, WithPublisher(pubSub))
	ctx := context.Background()

	_, err = svc.Submit(ctx, "p1", "snake", 70)
	require.NoError(t, err)
	held, err := repo.store.Get(ctx, nil, "p1", "snake")
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		var payload scoreevents.BestScoreRaisedPayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "p1", payload.PlayerID)
		assert.Equal(t, "snake", payload.GameID)
		assert.Equal(t, int64(70), payload.Score)
		assert.True(t, payload.RaisedAt.Equal(held.UpdatedAt), "raised_at %s is the record's updated_at %s", payload.RaisedAt, held.UpdatedAt)
		assert.Equal(t, "snake", msg.Metadata.Get("game_id"))
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("expected a best score raised event")
	}

	_, err = svc.Submit(ctx, "p1", "snake", 30)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		msg.Ack()
		t.Fatalf("unexpected event for a non-improving submission: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubmit_PublishFailureDoesNotChangeResult(t *testing.T) {
	svc := newTestService(NewFakeScoreRepo(), WithPublisher(FailingPublisher{}))

	result, err := svc.Submit(context.Background(), "p1", "snake", 70)
	require.NoError(t, err)
	assert.True(t, result.WasImproved)
}
