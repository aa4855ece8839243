package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"quill-backend/internal/logger"
	"quill-backend/internal/models"
	"quill-backend/internal/services"
)

type SystemHandler struct {
	statsService  *services.StatsService
	ollamaService *services.OllamaService
}

func NewSystemHandler(statsService *services.StatsService, ollamaService *services.OllamaService) *SystemHandler {
	return &SystemHandler{
		statsService:  statsService,
		ollamaService: ollamaService,
	}
}

// Stats handles GET /api/v1/stats with a best-effort memory snapshot.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.statsService.Snapshot(r.Context())
	if err != nil {
		logger.Error("stats snapshot failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to read system stats", r))
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Pull handles POST /api/v1/pull, proxying the engine's download progress
// as a line-delimited JSON stream.
func (h *SystemHandler) Pull(w http.ResponseWriter, r *http.Request) {
	var req models.PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Model) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Model is required", r))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	h.ollamaService.Pull(r.Context(), req.Model, w)
}
