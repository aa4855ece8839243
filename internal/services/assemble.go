package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"quill-backend/internal/models"
)

const defaultSystemInstruction = "You are an AI assistant."

// Appended to the system message when web search is enabled. Teaches the
// model the directive syntax the detector scans for.
const searchInstruction = `
If the user asks about current events, news, prices, or weather, output:
SEARCH: <query>
Example:
User: "apple stock"
Response: SEARCH: apple stock price today
`

type fileReader interface {
	ReadFileContext(path string) string
}

// Assembler builds the ordered message sequence for each inference turn.
// It is stateless apart from the injected clock: identical inputs yield
// identical output, and the caller's request is never mutated.
type Assembler struct {
	files                fileReader
	attachMaxBytes       int
	searchResultMaxBytes int
	now                  func() time.Time
}

func NewAssembler(files fileReader, attachMaxBytes, searchResultMaxBytes int) *Assembler {
	return &Assembler{
		files:                files,
		attachMaxBytes:       attachMaxBytes,
		searchResultMaxBytes: searchResultMaxBytes,
		now:                  time.Now,
	}
}

// AssembleTurnOne builds the message sequence for the first inference turn:
// a system message at position 0, then the caller's messages in their
// original order, with attachment context appended to the last user message
// when present.
func (a *Assembler) AssembleTurnOne(req models.ChatRequest) []models.Message {
	instruction := req.SystemPrompt
	if instruction == "" {
		instruction = defaultSystemInstruction
	}

	var system strings.Builder
	system.WriteString(instruction)
	system.WriteString("\nCurrent Date: ")
	system.WriteString(a.now().Format("2006-01-02"))
	system.WriteString("\n")
	if req.WebSearch {
		system.WriteString(searchInstruction)
	}

	messages := make([]models.Message, 0, len(req.Messages)+1)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: system.String()})
	messages = append(messages, req.Messages...)

	// Attachment context goes on the last user message. A trailing
	// assistant message means there is nothing sensible to attach to, so
	// injection is skipped rather than erroring.
	if len(req.FilePaths) > 0 && len(req.Messages) > 0 &&
		req.Messages[len(req.Messages)-1].Role == models.RoleUser {
		last := len(messages) - 1
		messages[last].Content += a.buildFileContext(req.FilePaths)
	}

	return messages
}

func (a *Assembler) buildFileContext(paths []string) string {
	var b strings.Builder
	b.WriteString("\n\n[Attached Files Context]:\n")
	for _, path := range paths {
		b.WriteString(a.files.ReadFileContext(path))
	}
	return truncateWithMarker(b.String(), a.attachMaxBytes)
}

// AssembleTurnTwo extends the first turn's messages with the model's own
// output (carrying its search directive) as an assistant turn and the
// fetched results as a user turn, so the whole exchange reads as a normal
// dialogue to the model.
func (a *Assembler) AssembleTurnTwo(turnOne []models.Message, turnOneText, searchResults string) []models.Message {
	messages := make([]models.Message, 0, len(turnOne)+2)
	messages = append(messages, turnOne...)
	messages = append(messages, models.Message{Role: models.RoleAssistant, Content: turnOneText})
	messages = append(messages, models.Message{
		Role: models.RoleUser,
		Content: fmt.Sprintf("Search Results: %s\n\nAnswer the user query using these results.",
			truncateWithMarker(searchResults, a.searchResultMaxBytes)),
	})
	return messages
}

// truncateWithMarker caps external text spliced into model input, backing
// up to a rune boundary and leaving a visible marker instead of silently
// clipping mid-sentence.
func truncateWithMarker(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n[...truncated]"
}
