package services

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"quill-backend/internal/models"
)

type fakeFileReader struct {
	contents map[string]string
}

func (f *fakeFileReader) ReadFileContext(path string) string {
	if text, ok := f.contents[path]; ok {
		return text
	}
	return "[Could not read file " + path + ": not found]\n"
}

func newTestAssembler(files fileReader) *Assembler {
	a := NewAssembler(files, 1024, 1024)
	a.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return a
}

func TestAssembleTurnOne_SystemMessage(t *testing.T) {
	a := newTestAssembler(&fakeFileReader{})

	tests := []struct {
		name         string
		req          models.ChatRequest
		wantContains []string
		wantAbsent   []string
	}{
		{
			"default system prompt",
			models.ChatRequest{Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}}},
			[]string{"You are an AI assistant.", "Current Date: 2026-03-14"},
			[]string{"SEARCH:"},
		},
		{
			"custom system prompt",
			models.ChatRequest{
				Messages:     []models.Message{{Role: models.RoleUser, Content: "hi"}},
				SystemPrompt: "You are a pirate.",
			},
			[]string{"You are a pirate.", "Current Date: 2026-03-14"},
			[]string{"You are an AI assistant."},
		},
		{
			"search instruction when enabled",
			models.ChatRequest{
				Messages:  []models.Message{{Role: models.RoleUser, Content: "hi"}},
				WebSearch: true,
			},
			[]string{"SEARCH: <query>", "apple stock price today"},
			nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			messages := a.AssembleTurnOne(tc.req)

			if messages[0].Role != models.RoleSystem {
				t.Fatalf("Expected system role at position 0, got %q", messages[0].Role)
			}
			for _, want := range tc.wantContains {
				if !strings.Contains(messages[0].Content, want) {
					t.Errorf("Expected system content to contain %q, got %q", want, messages[0].Content)
				}
			}
			for _, absent := range tc.wantAbsent {
				if strings.Contains(messages[0].Content, absent) {
					t.Errorf("Expected system content to not contain %q", absent)
				}
			}
		})
	}
}

func TestAssembleTurnOne_PreservesMessageOrder(t *testing.T) {
	a := newTestAssembler(&fakeFileReader{})
	req := models.ChatRequest{
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "first"},
			{Role: models.RoleAssistant, Content: "second"},
			{Role: models.RoleUser, Content: "third"},
		},
	}

	messages := a.AssembleTurnOne(req)

	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(messages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i+1].Content != want {
			t.Errorf("Expected message %d content %q, got %q", i+1, want, messages[i+1].Content)
		}
	}
}

func TestAssembleTurnOne_FileInjection(t *testing.T) {
	files := &fakeFileReader{contents: map[string]string{
		"/tmp/a.txt": "alpha content\n",
		"/tmp/b.txt": "beta content\n",
	}}
	a := newTestAssembler(files)

	req := models.ChatRequest{
		Messages:  []models.Message{{Role: models.RoleUser, Content: "summarize these"}},
		FilePaths: []string{"/tmp/a.txt", "/tmp/b.txt"},
	}

	messages := a.AssembleTurnOne(req)
	last := messages[len(messages)-1].Content

	if !strings.Contains(last, "[Attached Files Context]:") {
		t.Errorf("Expected attachment header in last message, got %q", last)
	}
	if !strings.Contains(last, "alpha content") || !strings.Contains(last, "beta content") {
		t.Errorf("Expected file contents in last message, got %q", last)
	}
	if strings.Index(last, "alpha content") > strings.Index(last, "beta content") {
		t.Error("Expected file contents in path order")
	}
}

func TestAssembleTurnOne_SkipsInjectionWhenLastNotUser(t *testing.T) {
	a := newTestAssembler(&fakeFileReader{contents: map[string]string{"/tmp/a.txt": "alpha"}})

	req := models.ChatRequest{
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "question"},
			{Role: models.RoleAssistant, Content: "answer"},
		},
		FilePaths: []string{"/tmp/a.txt"},
	}

	messages := a.AssembleTurnOne(req)

	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	if !reflect.DeepEqual(messages[1:], req.Messages) {
		t.Errorf("Expected caller messages unchanged, got %+v", messages[1:])
	}
}

func TestAssembleTurnOne_DoesNotMutateCallerRequest(t *testing.T) {
	a := newTestAssembler(&fakeFileReader{contents: map[string]string{"/tmp/a.txt": "alpha"}})

	original := []models.Message{{Role: models.RoleUser, Content: "summarize"}}
	req := models.ChatRequest{
		Messages:  original,
		FilePaths: []string{"/tmp/a.txt"},
	}

	a.AssembleTurnOne(req)

	if original[0].Content != "summarize" {
		t.Errorf("Caller message was mutated: %q", original[0].Content)
	}
}

func TestAssembleTurnOne_Deterministic(t *testing.T) {
	a := newTestAssembler(&fakeFileReader{})
	req := models.ChatRequest{
		Messages:  []models.Message{{Role: models.RoleUser, Content: "hi"}},
		WebSearch: true,
	}

	first := a.AssembleTurnOne(req)
	second := a.AssembleTurnOne(req)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical output for identical input")
	}
}

func TestAssembleTurnTwo(t *testing.T) {
	a := newTestAssembler(&fakeFileReader{})
	turnOne := []models.Message{
		{Role: models.RoleSystem, Content: "system"},
		{Role: models.RoleUser, Content: "apple stock"},
	}

	messages := a.AssembleTurnTwo(turnOne, "SEARCH: apple stock price today\n", "AAPL at $300")

	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(messages))
	}

	assistant := messages[2]
	if assistant.Role != models.RoleAssistant || assistant.Content != "SEARCH: apple stock price today\n" {
		t.Errorf("Expected verbatim turn-one text as assistant message, got %+v", assistant)
	}

	user := messages[3]
	if user.Role != models.RoleUser {
		t.Fatalf("Expected user role for results message, got %q", user.Role)
	}
	if !strings.Contains(user.Content, "Search Results: AAPL at $300") {
		t.Errorf("Expected search results in user message, got %q", user.Content)
	}
	if !strings.Contains(user.Content, "Answer the user query using these results.") {
		t.Errorf("Expected answer instruction in user message, got %q", user.Content)
	}
}

func TestAssembleTurnTwo_TruncatesLongResults(t *testing.T) {
	a := NewAssembler(&fakeFileReader{}, 1024, 32)

	long := strings.Repeat("r", 100)
	messages := a.AssembleTurnTwo(nil, "turn one", long)

	content := messages[len(messages)-1].Content
	if !strings.Contains(content, "[...truncated]") {
		t.Errorf("Expected truncation marker, got %q", content)
	}
	if strings.Contains(content, strings.Repeat("r", 33)) {
		t.Error("Expected results capped at 32 bytes")
	}
}

func TestTruncateWithMarker_RuneBoundary(t *testing.T) {
	s := "héllo wörld"
	got := truncateWithMarker(s, 2)

	if !strings.HasSuffix(got, "[...truncated]") {
		t.Fatalf("Expected truncation marker, got %q", got)
	}
	trimmed := strings.TrimSuffix(got, "\n[...truncated]")
	for _, r := range trimmed {
		if r == '�' {
			t.Error("Truncation split a rune")
		}
	}
}
