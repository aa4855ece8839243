package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill-backend/internal/handlers"
	"quill-backend/internal/services"
	"quill-backend/internal/websocket"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	fakeOllama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(fakeOllama.Close)

	ollamaService := services.NewOllamaService(fakeOllama.URL, "test-model", 0.7, time.Second)
	searchService := services.NewSearchService("http://localhost:0", "", time.Second)
	assembler := services.NewAssembler(services.NewFileExtractService(), 1024, 1024)
	chatService := services.NewChatService(ollamaService, searchService, assembler)

	return New(
		handlers.NewChatHandler(chatService),
		handlers.NewSystemHandler(services.NewStatsService(), ollamaService),
		websocket.NewHandler(chatService),
	)
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("Unexpected body: %q", rr.Body.String())
	}
}

func TestRequestIDAssigned(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated X-Request-ID header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "client-id-1" {
		t.Errorf("Expected client request ID echoed, got %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}
