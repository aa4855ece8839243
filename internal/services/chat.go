package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"quill-backend/internal/logger"
	"quill-backend/internal/models"
)

// relay is the streaming-inference boundary the orchestrator consumes.
type relay interface {
	Stream(ctx context.Context, messages []models.Message, model string) <-chan string
	DefaultModel() string
}

type searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// ChatService drives one chat request end to end: stream the first turn,
// detect a search directive in its accumulated text, fetch results, stream
// the second turn. All state is request-local; concurrent requests share
// only the underlying HTTP clients.
type ChatService struct {
	relay     relay
	search    searcher
	assembler *Assembler
}

func NewChatService(relay relay, search searcher, assembler *Assembler) *ChatService {
	return &ChatService{
		relay:     relay,
		search:    search,
		assembler: assembler,
	}
}

// StreamChat writes the full chunk sequence for one request to w, flushing
// after every chunk when w supports it. The returned error is non-nil only
// when the client went away mid-stream; upstream failures arrive in-band as
// error-marker chunks and end the stream normally.
func (s *ChatService) StreamChat(ctx context.Context, req models.ChatRequest, w io.Writer) error {
	model := req.Model
	if model == "" {
		model = s.relay.DefaultModel()
	}

	turnOne := s.assembler.AssembleTurnOne(req)

	turnOneText, err := s.streamTurn(ctx, turnOne, model, w)
	if err != nil {
		return err
	}

	if !req.WebSearch {
		return nil
	}

	query, ok := DetectSearchDirective(turnOneText)
	if !ok {
		return nil
	}

	logger.Info("search directive detected", "query", query)
	if err := writeChunk(w, fmt.Sprintf("\n\n🔍 **Searching for:** *%s*...\n\n", query)); err != nil {
		return err
	}

	results, searchErr := s.search.Search(ctx, query)
	if searchErr != nil {
		// Search failure is not fatal: the model gets an error blob and
		// answers with what it has.
		logger.Warn("web search failed", "query", query, "error", searchErr)
		results = fmt.Sprintf("[Search error: %v]", searchErr)
	}

	if err := writeChunk(w, "\n\n---\n\n"); err != nil {
		return err
	}

	turnTwo := s.assembler.AssembleTurnTwo(turnOne, turnOneText, results)

	// One search round per request: the second turn streams to completion
	// with no further detection, even if the model asks again.
	_, err = s.streamTurn(ctx, turnTwo, model, w)
	return err
}

// streamTurn forwards one relay invocation chunk-by-chunk, in production
// order, while accumulating the turn's full text for directive scanning.
func (s *ChatService) streamTurn(ctx context.Context, messages []models.Message, model string, w io.Writer) (string, error) {
	var turn strings.Builder
	for chunk := range s.relay.Stream(ctx, messages, model) {
		turn.WriteString(chunk)
		if err := writeChunk(w, chunk); err != nil {
			// Client is gone. Stop forwarding; the relay goroutine winds
			// down on its own via ctx.
			return turn.String(), err
		}
	}
	return turn.String(), nil
}

func writeChunk(w io.Writer, chunk string) error {
	if _, err := io.WriteString(w, chunk); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
