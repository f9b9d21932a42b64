package scorehandlers

import (
	"log/slog"
	"net/http"

	authhandlers "github.com/Gr33nOps/VTcade/app/modules/auth/infrastructure/handlers"
	scoredto "github.com/Gr33nOps/VTcade/app/modules/score/dto"
	"github.com/go-chi/chi/v5"
)

// HandleResetGame removes every best score of a game.
func (h *ScoreHandlers) HandleResetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleResetGame")
	defer span.End()

	gameID := chi.URLParam(r, "game")
	deleted, err := h.service.ResetGame(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	h.logger.InfoContext(ctx, "Leaderboard reset",
		slog.String("game_id", gameID),
		slog.Int("deleted", deleted),
		slog.String("admin", adminID(r)),
	)
	writeJSON(w, http.StatusOK, scoredto.ResetGameResponse{GameID: gameID, Deleted: deleted})
}

// HandleDeleteEntry removes one player's best score.
func (h *ScoreHandlers) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleDeleteEntry")
	defer span.End()

	gameID, playerID := chi.URLParam(r, "game"), chi.URLParam(r, "player")
	if err := h.service.DeleteEntry(ctx, gameID, playerID); err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	h.logger.InfoContext(ctx, "Leaderboard entry deleted",
		slog.String("game_id", gameID),
		slog.String("player_id", playerID),
		slog.String("admin", adminID(r)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleFlagEntry marks or clears an entry as suspicious.
func (h *ScoreHandlers) HandleFlagEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleFlagEntry")
	defer span.End()

	var req scoredto.FlagEntryRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Flagged == nil {
		writeJSON(w, http.StatusBadRequest, scoredto.ErrorResponse{Error: `body must be {"flagged": true|false, "reason": "..."}`})
		return
	}

	gameID, playerID := chi.URLParam(r, "game"), chi.URLParam(r, "player")
	if err := h.service.FlagEntry(ctx, gameID, playerID, req.Reason, *req.Flagged); err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	h.logger.InfoContext(ctx, "Leaderboard entry flag changed",
		slog.String("game_id", gameID),
		slog.String("player_id", playerID),
		slog.Bool("flagged", *req.Flagged),
		slog.String("admin", adminID(r)),
	)
	w.WriteHeader(http.StatusNoContent)
}

func adminID(r *http.Request) string {
	if claims, ok := authhandlers.ClaimsFromContext(r.Context()); ok {
		return claims.PlayerID
	}
	return ""
}
