package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quill-backend/internal/logger"
	"quill-backend/internal/models"
)

// chatPayload is the request body for the daemon's /api/chat endpoint.
type chatPayload struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  chatOptions      `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

// chatFrame is one newline-delimited JSON frame of a streaming chat
// response. Current daemons put text under message.content; very old ones
// used a top-level response field.
type chatFrame struct {
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaService is the HTTP client for the local Ollama daemon.
type OllamaService struct {
	baseURL      string
	defaultModel string
	temperature  float64
	chatClient   *http.Client
	pullClient   *http.Client
}

func NewOllamaService(baseURL, defaultModel string, temperature float64, timeout time.Duration) *OllamaService {
	return &OllamaService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: defaultModel,
		temperature:  temperature,
		chatClient:   &http.Client{Timeout: timeout},
		// Model downloads routinely outlive the chat timeout; the request
		// context bounds them instead.
		pullClient: &http.Client{},
	}
}

func (s *OllamaService) DefaultModel() string {
	return s.defaultModel
}

// Stream performs one streaming chat call and returns its text increments
// as a channel. The channel is always closed; failures surface as a single
// terminal "[Error: ...]" chunk, never as an error value, so consumers can
// range over it without a second error path. Unparsable frames are skipped.
//
// The daemon is always asked for the service's configured temperature; the
// caller-requested temperature is deliberately not forwarded (see DESIGN.md).
func (s *OllamaService) Stream(ctx context.Context, messages []models.Message, model string) <-chan string {
	if model == "" {
		model = s.defaultModel
	}

	out := make(chan string)
	go func() {
		defer close(out)

		emit := func(chunk string) bool {
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		body, err := json.Marshal(chatPayload{
			Model:    model,
			Messages: messages,
			Stream:   true,
			Options:  chatOptions{Temperature: s.temperature},
		})
		if err != nil {
			emit(fmt.Sprintf("[Error: %v]", err))
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			emit(fmt.Sprintf("[Error: %v]", err))
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.chatClient.Do(req)
		if err != nil {
			emit(fmt.Sprintf("[Error: %v]", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			emit(fmt.Sprintf("[Error: ollama returned status %d: %s]", resp.StatusCode, strings.TrimSpace(string(detail))))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var frame chatFrame
			if err := json.Unmarshal(line, &frame); err != nil {
				logger.Debug("skipping malformed ollama frame", "error", err)
				continue
			}

			switch {
			case frame.Message != nil:
				if frame.Message.Content != "" && !emit(frame.Message.Content) {
					return
				}
			case frame.Response != "":
				if !emit(frame.Response) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			emit(fmt.Sprintf("[Error: %v]", err))
		}
	}()

	return out
}

// Pull proxies a model download through the daemon, forwarding each NDJSON
// progress line verbatim. Transport failures become a single {"error": ...}
// line on the same stream; this method never returns an error to the
// handler.
func (s *OllamaService) Pull(ctx context.Context, model string, w io.Writer) {
	writeLine := func(line []byte) {
		w.Write(line)
		w.Write([]byte("\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
	fail := func(err error) {
		line, _ := json.Marshal(map[string]string{"error": err.Error()})
		writeLine(line)
	}

	body, err := json.Marshal(map[string]string{"name": model})
	if err != nil {
		fail(err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		fail(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.pullClient.Do(req)
	if err != nil {
		fail(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fail(fmt.Errorf("ollama returned status %d", resp.StatusCode))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		writeLine(scanner.Bytes())
	}
	if err := scanner.Err(); err != nil {
		fail(err)
	}
}
