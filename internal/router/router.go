package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quill-backend/internal/handlers"
	"quill-backend/internal/middleware"
	"quill-backend/internal/websocket"
)

func New(
	chatHandler *handlers.ChatHandler,
	systemHandler *handlers.SystemHandler,
	wsHandler *websocket.Handler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		// Electron client; its origin is not a fixed host.
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Chat ────
		r.Post("/chat", chatHandler.Stream)
		r.Get("/ws", wsHandler.HandleWebSocket)

		// ──── Engine & Host ────
		r.Get("/stats", systemHandler.Stats)
		r.Post("/pull", systemHandler.Pull)
	})

	return r
}
