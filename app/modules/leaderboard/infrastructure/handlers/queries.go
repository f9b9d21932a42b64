package leaderboardhandlers

import (
	"net/http"

	leaderboarddto "github.com/Gr33nOps/VTcade/app/modules/leaderboard/dto"
	"github.com/go-chi/chi/v5"
)

// HandleListGames lists the games with at least one best score.
func (h *LeaderboardHandlers) HandleListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleListGames")
	defer span.End()

	games, err := h.service.ListGamesWithActivity(ctx)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleTopN serves the head of a game's leaderboard.
func (h *LeaderboardHandlers) HandleTopN(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleTopN")
	defer span.End()

	limit, ok := queryInt(r, "limit", DefaultTopN)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
		return
	}

	top, err := h.service.GetTopN(ctx, chi.URLParam(r, "game"), limit)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

// HandlePlayerStanding serves a player's rank in a game.
func (h *LeaderboardHandlers) HandlePlayerStanding(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandlePlayerStanding")
	defer span.End()

	standing, err := h.service.GetPlayerStanding(ctx, chi.URLParam(r, "game"), chi.URLParam(r, "player"))
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, standing)
}

// HandlePersonalBest serves a player's best score in a game.
func (h *LeaderboardHandlers) HandlePersonalBest(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandlePersonalBest")
	defer span.End()

	best, err := h.service.GetPersonalBest(ctx, chi.URLParam(r, "game"), chi.URLParam(r, "player"))
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, best)
}

// HandleRecentSubmissions serves the submission log, newest first.
func (h *LeaderboardHandlers) HandleRecentSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleRecentSubmissions")
	defer span.End()

	limit, ok := optionalQueryInt(r, "limit")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
		return
	}

	q := r.URL.Query()
	subs, err := h.service.RecentSubmissions(ctx, leaderboarddto.SubmissionQuery{
		PlayerID: q.Get("player"),
		GameID:   q.Get("game"),
		Limit:    limit,
	})
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}
