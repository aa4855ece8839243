package services

import (
	"regexp"
	"strings"
)

// The model requests a web search by emitting a "SEARCH: <query>" line in
// its output. The matching is kept here, isolated from the orchestrator, so
// a structured tool-call protocol could replace it later without touching
// the state machine.
var searchDirectivePattern = regexp.MustCompile(`(?i)SEARCH:\s*(.+?)(?:\n|$)`)

// DetectSearchDirective scans a completed turn's text for a search
// directive and returns the trimmed query. Only the first directive counts.
func DetectSearchDirective(turnText string) (string, bool) {
	cleaned := StripThinking(turnText)

	m := searchDirectivePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return "", false
	}

	query := strings.TrimSpace(m[1])
	if query == "" {
		return "", false
	}
	return query, true
}
