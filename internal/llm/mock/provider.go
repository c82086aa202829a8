package mock

import (
	"log/slog"

	"github.com/valentimarco/ollamastream/internal/config"
	"github.com/valentimarco/ollamastream/internal/llm/common"
)

// Provider implements the registry.Provider contract for the mock backend
type Provider struct{}

var _ common.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{}
}

// ProviderName returns the name of this provider
func (p *Provider) ProviderName() string {
	return "mock"
}

// Describe returns host-facing display metadata
func (p *Provider) Describe() common.ProviderInfo {
	return common.ProviderInfo{
		Name:        "Mock",
		Description: "Canned responses for testing and offline use",
		DocsURL:     "",
	}
}

// RequiresAPIKey returns false; no API key required
func (p *Provider) RequiresAPIKey() bool {
	return false
}

// CreateClient creates a mock streaming client with a fixed response
func (p *Provider) CreateClient(cfg *config.Config, logger *slog.Logger) (common.StreamingLLM, error) {
	return &Client{
		Lines: []string{
			`{"message":{"role":"assistant","content":"Mock LLM response"},"done":false}`,
			`{"message":{"role":"assistant","content":""},"done":true}`,
		},
	}, nil
}
