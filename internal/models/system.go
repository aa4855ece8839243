package models

// PullRequest asks the backend to download a model through the engine.
type PullRequest struct {
	Model string `json:"model"`
}

// StatsResponse is a best-effort snapshot of host and engine memory usage.
type StatsResponse struct {
	SystemMemoryPercent float64 `json:"system_memory_percent"`
	OllamaMemoryMB      float64 `json:"ollama_memory_mb"`
	TotalMemoryGB       float64 `json:"total_memory_gb"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
