package leaderboardhandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	leaderboardservice "github.com/Gr33nOps/VTcade/app/modules/leaderboard/application"
	leaderboarddto "github.com/Gr33nOps/VTcade/app/modules/leaderboard/dto"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

var clockStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newSeededRouter serves the query routes over an in-memory store holding
// snake: p1=100 (first), p2=100, p3=90 and tetris: p1=5.
func newSeededRouter(t *testing.T) http.Handler {
	t.Helper()

	tick := clockStart
	repo := scoredb.NewMemoryRepository(scoredb.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))

	ctx := context.Background()
	for _, s := range []struct {
		player, game string
		score        int64
	}{
		{"p1", "snake", 100},
		{"p2", "snake", 100},
		{"p3", "snake", 90},
		{"p1", "tetris", 5},
	} {
		_, _, err := repo.RaiseIfHigher(ctx, nil, s.player, s.game, s.score)
		require.NoError(t, err)
		require.NoError(t, repo.AppendSubmission(ctx, nil, &scoredb.SubmissionEvent{
			PlayerID:          s.player,
			GameID:            s.game,
			SubmittedScore:    s.score,
			AcceptedAsNewBest: true,
			StoredScore:       s.score,
		}))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	engine := leaderboardservice.NewRankingEngine(repo, nil, 50)
	svc := leaderboardservice.NewLeaderboardService(repo, engine, logger, observability.NewNoop(), tracer, 100)
	h := NewLeaderboardHandlers(svc, logger, tracer)

	r := chi.NewRouter()
	r.Get("/api/leaderboards", h.HandleListGames)
	r.Get("/api/leaderboards/{game}", h.HandleTopN)
	r.Get("/api/leaderboards/{game}/players/{player}", h.HandlePlayerStanding)
	r.Get("/api/leaderboards/{game}/players/{player}/best", h.HandlePersonalBest)
	r.Get("/api/leaderboards/{game}/players/{player}/chart.png", h.HandleProgressChart)
	r.Get("/api/submissions/recent", h.HandleRecentSubmissions)
	r.Get("/api/admin/leaderboards/{game}/export", h.HandleExport)
	return r
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestLeaderboardHandlers_HandleTopN(t *testing.T) {
	router := newSeededRouter(t)

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantPlayers []string
		wantRanks   []int
	}{
		{
			name:        "default limit",
			path:        "/api/leaderboards/snake",
			wantStatus:  http.StatusOK,
			wantPlayers: []string{"p1", "p2", "p3"},
			wantRanks:   []int{1, 2, 3},
		},
		{
			name:        "explicit limit",
			path:        "/api/leaderboards/snake?limit=2",
			wantStatus:  http.StatusOK,
			wantPlayers: []string{"p1", "p2"},
			wantRanks:   []int{1, 2},
		},
		{
			name:        "empty game",
			path:        "/api/leaderboards/pacman",
			wantStatus:  http.StatusOK,
			wantPlayers: []string{},
			wantRanks:   []int{},
		},
		{name: "limit zero", path: "/api/leaderboards/snake?limit=0", wantStatus: http.StatusBadRequest},
		{name: "limit above max", path: "/api/leaderboards/snake?limit=51", wantStatus: http.StatusBadRequest},
		{name: "limit not a number", path: "/api/leaderboards/snake?limit=ten", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, router, tt.path)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp leaderboarddto.TopNResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))

			players := []string{}
			ranks := []int{}
			for _, e := range resp.Entries {
				players = append(players, e.PlayerID)
				ranks = append(ranks, e.Rank)
			}
			assert.Equal(t, tt.wantPlayers, players)
			assert.Equal(t, tt.wantRanks, ranks)
		})
	}
}

func TestLeaderboardHandlers_PlayerViews(t *testing.T) {
	router := newSeededRouter(t)

	t.Run("standing", func(t *testing.T) {
		rr := get(t, router, "/api/leaderboards/snake/players/p3")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp leaderboarddto.PlayerStanding
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Found)
		assert.Equal(t, 3, resp.Rank)
		assert.Equal(t, int64(90), resp.Score)
		assert.Equal(t, 3, resp.TotalPlayers)
	})

	t.Run("standing of absent player", func(t *testing.T) {
		rr := get(t, router, "/api/leaderboards/snake/players/nobody")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp leaderboarddto.PlayerStanding
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.False(t, resp.Found)
		assert.Zero(t, resp.Rank)
	})

	t.Run("personal best", func(t *testing.T) {
		rr := get(t, router, "/api/leaderboards/tetris/players/p1/best")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp leaderboarddto.PersonalBest
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Exists)
		assert.Equal(t, int64(5), resp.Score)
	})

	t.Run("games", func(t *testing.T) {
		rr := get(t, router, "/api/leaderboards")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"games":["snake","tetris"],"total":2}`, rr.Body.String())
	})
}

func TestLeaderboardHandlers_HandleRecentSubmissions(t *testing.T) {
	router := newSeededRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantTotal  int
		wantFirst  string
	}{
		{name: "all", path: "/api/submissions/recent", wantStatus: http.StatusOK, wantTotal: 4, wantFirst: "tetris"},
		{name: "by game", path: "/api/submissions/recent?game=snake&limit=2", wantStatus: http.StatusOK, wantTotal: 2, wantFirst: "snake"},
		{name: "by player", path: "/api/submissions/recent?player=p1", wantStatus: http.StatusOK, wantTotal: 2, wantFirst: "tetris"},
		{name: "bad limit", path: "/api/submissions/recent?limit=-3", wantStatus: http.StatusBadRequest},
		{name: "zero limit", path: "/api/submissions/recent?limit=0", wantStatus: http.StatusBadRequest},
		{name: "non-numeric limit", path: "/api/submissions/recent?limit=ten", wantStatus: http.StatusBadRequest},
		{name: "limit over max", path: "/api/submissions/recent?limit=101", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, router, tt.path)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp leaderboarddto.SubmissionsResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.wantTotal, resp.Total)
			require.NotEmpty(t, resp.Submissions)
			assert.Equal(t, tt.wantFirst, resp.Submissions[0].GameID)
		})
	}
}

func TestLeaderboardHandlers_HandleExport(t *testing.T) {
	router := newSeededRouter(t)

	rr := get(t, router, "/api/admin/leaderboards/snake/export")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "snake-leaderboard-")

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leaderboard")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "p1", "100"}, rows[1][:3])
	assert.Equal(t, []string{"3", "p3", "90"}, rows[3][:3])
}

func TestLeaderboardHandlers_HandleProgressChart(t *testing.T) {
	router := newSeededRouter(t)

	rr := get(t, router, "/api/leaderboards/snake/players/p1/chart.png")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	_, err := png.DecodeConfig(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)

	rr = get(t, router, "/api/leaderboards/snake/players/%20/chart.png")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
