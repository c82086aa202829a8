package ollama

import "github.com/valentimarco/ollamastream/internal/llm/common"

// API paths for the two request forms
const (
	chatPath     = "/api/chat"
	generatePath = "/api/generate"
)

// ChatChunk is one NDJSON line of a streamed /api/chat response
type ChatChunk struct {
	Model     string         `json:"model"`
	CreatedAt string         `json:"created_at"`
	Message   common.Message `json:"message"`
	Done      bool           `json:"done"`

	// timing and token counts, present on the final chunk
	TotalDuration      int64 `json:"total_duration,omitempty"`
	LoadDuration       int64 `json:"load_duration,omitempty"`
	PromptEvalCount    int   `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64 `json:"prompt_eval_duration,omitempty"`
	EvalCount          int   `json:"eval_count,omitempty"`
	EvalDuration       int64 `json:"eval_duration,omitempty"`
}

// GenerateChunk is one NDJSON line of a streamed /api/generate response
type GenerateChunk struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`

	TotalDuration   int64 `json:"total_duration,omitempty"`
	PromptEvalCount int   `json:"prompt_eval_count,omitempty"`
	EvalCount       int   `json:"eval_count,omitempty"`
}

// ErrorResponse represents a non-streamed error body from the server
type ErrorResponse struct {
	Error string `json:"error"`
}
