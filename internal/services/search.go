package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SearchService calls the web-search provider. Results are an opaque text
// blob; the orchestrator splices them into the second inference turn.
type SearchService struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewSearchService(url, apiKey string, timeout time.Duration) *SearchService {
	return &SearchService{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search performs one search call and returns the raw response body. The
// orchestrator turns any error into an error-bearing result text; failure
// here is never fatal to a chat request.
func (s *SearchService) Search(ctx context.Context, query string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("search API key is not configured")
	}

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return "", fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}
