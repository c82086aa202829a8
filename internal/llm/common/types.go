package common

// Message represents a single role/content pair in a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the generation input for a streaming call.
// Chat mode is selected whenever Messages is non-empty; otherwise the
// prompt/images completion form is sent, even if Prompt is empty.
type Payload struct {
	Messages []Message
	Prompt   string
	Images   []string // base64-encoded images for multimodal models
}

// IsChat reports whether this payload selects the chat request form
func (p Payload) IsChat() bool {
	return len(p.Messages) > 0
}

// ProviderInfo holds host-facing display metadata for a provider
type ProviderInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DocsURL     string `json:"docs_url"`
}
