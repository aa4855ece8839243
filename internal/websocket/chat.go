package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"quill-backend/internal/logger"
	"quill-backend/internal/models"
	"quill-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The Electron client loads from file:// or app://, so the origin is
	// not a fixed host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler streams one chat request over a WebSocket connection: the client
// sends a single ChatRequest JSON message, each chunk comes back as one
// text frame, and the connection closes normally when the stream ends.
type Handler struct {
	chatService *services.ChatService
}

func NewHandler(chatService *services.ChatService) *Handler {
	return &Handler{chatService: chatService}
}

// chunkWriter adapts the orchestrator's writer sink to text frames.
type chunkWriter struct {
	conn *websocket.Conn
}

func (cw *chunkWriter) Write(p []byte) (int, error) {
	if err := cw.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req models.ChatRequest
	if err := conn.ReadJSON(&req); err != nil {
		closeWith(conn, "invalid request payload")
		return
	}
	if len(req.Messages) == 0 {
		closeWith(conn, "at least one message is required")
		return
	}

	if err := h.chatService.StreamChat(r.Context(), req, &chunkWriter{conn: conn}); err != nil {
		logger.Debug("websocket chat aborted", "error", err)
		return
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func closeWith(conn *websocket.Conn, reason string) {
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}
