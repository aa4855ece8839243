package handlers

import (
	"encoding/json"
	"net/http"

	"quill-backend/internal/logger"
	"quill-backend/internal/models"
	"quill-backend/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Stream handles POST /api/v1/chat. The response is a single text/plain
// chunked stream: model tokens interleaved with orchestrator progress
// markers, in order. Once streaming has begun all failures are in-band
// text markers, never broken connections.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "At least one message is required", r))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if err := h.chatService.StreamChat(r.Context(), req, w); err != nil {
		// Client disconnected mid-stream; nothing left to send.
		logger.Debug("chat stream aborted", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
