package leaderboardhandlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// HandleExport streams a game's full leaderboard as an xlsx workbook.
func (h *LeaderboardHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleExport")
	defer span.End()

	gameID := chi.URLParam(r, "game")
	data, err := h.service.ExportGame(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	filename := fmt.Sprintf("%s-leaderboard-%s.xlsx", gameID, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "Failed to write export", slog.String("game_id", gameID), slog.Any("error", err))
	}
}

// HandleProgressChart serves a player's submission history in a game as a PNG.
func (h *LeaderboardHandlers) HandleProgressChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleProgressChart")
	defer span.End()

	gameID := chi.URLParam(r, "game")
	playerID := chi.URLParam(r, "player")
	data, err := h.service.ProgressChart(ctx, gameID, playerID)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "Failed to write chart", slog.String("game_id", gameID), slog.String("player_id", playerID), slog.Any("error", err))
	}
}
