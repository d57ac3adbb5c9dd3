package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ugaemi/horsingaround-server/internal/store"
)

const (
	defaultRoundsLimit = 20
	maxRoundsLimit     = 100
)

// RoundsHandler serves finished round results over HTTP.
type RoundsHandler struct {
	store store.RoundStore
}

// NewRoundsHandler creates a rounds handler. A nil store serves empty results.
func NewRoundsHandler(s store.RoundStore) *RoundsHandler {
	return &RoundsHandler{store: s}
}

// HandleList serves GET /rounds?limit=N, newest first.
func (h *RoundsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultRoundsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxRoundsLimit)
	}

	if h.store == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}

	rounds, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list rounds", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list rounds")
		return
	}
	if rounds == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

// HandleGet serves GET /rounds/{id}.
func (h *RoundsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSONError(w, http.StatusNotFound, "round not found")
		return
	}

	round, err := h.store.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("failed to find round", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to find round")
		return
	}
	if round == nil {
		writeJSONError(w, http.StatusNotFound, "round not found")
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
