package leaderboardhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	leaderboardservice "github.com/Gr33nOps/VTcade/app/modules/leaderboard/application"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTopN is the leaderboard size served when the client gives no limit.
const DefaultTopN = 10

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardHandlers serves the read side of the leaderboard over HTTP.
type LeaderboardHandlers struct {
	service leaderboardservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewLeaderboardHandlers creates a new LeaderboardHandlers.
func NewLeaderboardHandlers(service leaderboardservice.Service, logger *slog.Logger, tracer trace.Tracer) *LeaderboardHandlers {
	return &LeaderboardHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *LeaderboardHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, leaderboardservice.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, leaderboardservice.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "leaderboard temporarily unavailable"})
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled leaderboard error", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// optionalQueryInt is queryInt for parameters whose absence the service
// resolves; nil means the parameter was not sent.
func optionalQueryInt(r *http.Request, name string) (*int, bool) {
	if r.URL.Query().Get(name) == "" {
		return nil, true
	}
	v, ok := queryInt(r, name, 0)
	if !ok {
		return nil, false
	}
	return &v, true
}
