package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kdimtricp/cuetrainer/internal/training"
)

func (h *Handlers) StartSession(w http.ResponseWriter, r *http.Request) {
	// An empty body starts a session with the defaults.
	var req training.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.Trainer.StartSession(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, "Failed to start session", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) SessionHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Trainer.History(r.Context(), r.URL.Query().Get("user_email"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to load history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handlers) LogEvent(w http.ResponseWriter, r *http.Request) {
	var req training.LogEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.Trainer.LogEvent(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, "Failed to log event", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
