package services

import (
	"regexp"
	"strings"
)

var thinkBlockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes reasoning markup (deepseek-r1 style <think> blocks)
// from model output, including a trailing block the model never closed.
// Directive scanning runs on the cleaned text; the raw text is what streams
// to the client.
func StripThinking(s string) string {
	s = thinkBlockPattern.ReplaceAllString(s, "")
	if idx := strings.Index(s, "<think>"); idx >= 0 {
		s = s[:idx]
	}
	return s
}
