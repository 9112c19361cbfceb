package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kdimtricp/cuetrainer/internal/ai"
	"github.com/kdimtricp/cuetrainer/internal/analysis"
	"github.com/kdimtricp/cuetrainer/internal/database"
	"github.com/kdimtricp/cuetrainer/internal/groundtruth"
	"github.com/kdimtricp/cuetrainer/internal/models"
	"github.com/kdimtricp/cuetrainer/internal/storage"
	"github.com/kdimtricp/cuetrainer/internal/training"
)

type Analyzer interface {
	AnalyzeVideo(ctx context.Context, path, broadcastStart string, attributes []string, interval float64) (*analysis.Result, error)
	Persist(ctx context.Context, result *analysis.Result, title, filePath string) error
}

type Trainer interface {
	StartSession(ctx context.Context, req training.StartSessionRequest) (*training.SessionResponse, error)
	LogEvent(ctx context.Context, req training.LogEventRequest) (*training.FeedbackResponse, error)
	History(ctx context.Context, email string) ([]training.SessionHistoryItem, error)
}

type VideoLister interface {
	ListVideos(ctx context.Context) ([]models.Video, error)
}

type AttributeLister interface {
	ListAttributes(ctx context.Context, videoID string) ([]string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Analyzer          Analyzer
	Trainer           Trainer
	Videos            VideoLister
	Attributes        AttributeLister
	Storage           storage.Storage
	DB                Pinger
	AssetsPath        string
	MaxUploadSize     int64
	DefaultAttributes []string
	Logger            *slog.Logger
}

func (h *Handlers) log() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cue Trainer API is running"})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			h.log().Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Detail: message})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ai.ErrNotFound),
		errors.Is(err, ai.ErrEmptyResult),
		errors.Is(err, groundtruth.ErrInvalidBroadcastTime),
		errors.Is(err, training.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, training.ErrSessionNotFound),
		errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ai.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, ai.ErrInferenceFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeDomainError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log().Error(msg, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg+": "+err.Error())
}
