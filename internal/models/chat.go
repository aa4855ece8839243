package models

// Message roles understood by the inference engine.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation. Ordering is
// chronological and significant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint by the desktop client.
type ChatRequest struct {
	Messages  []Message `json:"messages"`
	Model     string    `json:"model,omitempty"`
	FilePaths []string  `json:"file_paths,omitempty"`
	WebSearch bool      `json:"web_search,omitempty"`
	// Temperature is accepted on the wire but not forwarded to the engine;
	// the relay pins its configured default. See DESIGN.md.
	Temperature  float64 `json:"temperature,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
}
