package scorehandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	scoreservice "github.com/Gr33nOps/VTcade/app/modules/score/application"
	scoredto "github.com/Gr33nOps/VTcade/app/modules/score/dto"
	"go.opentelemetry.io/otel/trace"
)

const (
	msgNewHighscore = "New highscore!"
	msgScoreSaved   = "Score saved"

	// maxBodyBytes bounds submission and admin request bodies.
	maxBodyBytes = 4 << 10
)

// ScoreHandlers serves the write side of the leaderboard over HTTP.
type ScoreHandlers struct {
	service scoreservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewScoreHandlers creates a new ScoreHandlers.
func NewScoreHandlers(service scoreservice.Service, logger *slog.Logger, tracer trace.Tracer) *ScoreHandlers {
	return &ScoreHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Storage failures carry
// confirmed=false so clients know to retry.
func (h *ScoreHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scoreservice.ErrInvalidScore),
		errors.Is(err, scoreservice.ErrInvalidArgument),
		errors.Is(err, scoreservice.ErrUnknownGame):
		writeJSON(w, http.StatusBadRequest, scoredto.ErrorResponse{Error: clientMessage(err)})
	case errors.Is(err, scoreservice.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, scoredto.ErrorResponse{Error: scoreservice.ErrEntryNotFound.Error()})
	case errors.Is(err, scoreservice.ErrStorageUnavailable):
		confirmed := false
		writeJSON(w, http.StatusServiceUnavailable, scoredto.ErrorResponse{
			Error:     "score storage is temporarily unavailable, please retry",
			Confirmed: &confirmed,
		})
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled score error", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, scoredto.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

// clientMessage strips the operation prefix added by the service wrapper.
func clientMessage(err error) string {
	for _, sentinel := range []error{
		scoreservice.ErrInvalidScore,
		scoreservice.ErrInvalidArgument,
		scoreservice.ErrUnknownGame,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
