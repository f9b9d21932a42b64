package scorehandlers

import (
	"log/slog"
	"net/http"

	authhandlers "github.com/Gr33nOps/VTcade/app/modules/auth/infrastructure/handlers"
	scoredto "github.com/Gr33nOps/VTcade/app/modules/score/dto"
)

// HandleSubmitScore records a score for the authenticated player.
func (h *ScoreHandlers) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleSubmitScore")
	defer span.End()

	claims, ok := authhandlers.ClaimsFromContext(ctx)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, scoredto.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req scoredto.SubmitScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, scoredto.ErrorResponse{Error: "request body must be JSON with game and score"})
		return
	}

	result, err := h.service.Submit(ctx, claims.PlayerID, req.Game, req.Score)
	if err != nil {
		span.RecordError(err)
		h.logger.WarnContext(ctx, "Score submission failed",
			slog.String("player_id", claims.PlayerID),
			slog.String("game_id", req.Game),
			slog.Any("error", err),
		)
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	msg := msgScoreSaved
	if result.WasImproved {
		msg = msgNewHighscore
	}
	writeJSON(w, http.StatusOK, scoredto.SubmitScoreResponse{
		StoredScore: result.StoredScore,
		WasImproved: result.WasImproved,
		Message:     msg,
	})
}
