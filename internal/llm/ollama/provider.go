package ollama

import (
	"log/slog"
	"time"

	"github.com/valentimarco/ollamastream/internal/config"
	"github.com/valentimarco/ollamastream/internal/llm/common"
)

// Provider implements the registry.Provider contract for Ollama
type Provider struct{}

// ensure Provider implements the common.Provider interface
var _ common.Provider = (*Provider)(nil)

// New creates a new Ollama provider instance
func New() *Provider {
	return &Provider{}
}

// ProviderName returns the name of this provider
func (p *Provider) ProviderName() string {
	return "ollama"
}

// Describe returns host-facing display metadata
func (p *Provider) Describe() common.ProviderInfo {
	return common.ProviderInfo{
		Name:        "Ollama",
		Description: "Configuration for a self-hosted Ollama inference server",
		DocsURL:     "https://ollama.ai/library",
	}
}

// RequiresAPIKey returns false; Ollama runs locally without authentication
func (p *Provider) RequiresAPIKey() bool {
	return false
}

// CreateClient builds a streaming client from the configured settings
func (p *Provider) CreateClient(cfg *config.Config, logger *slog.Logger) (common.StreamingLLM, error) {
	settings := cfg.Providers.Ollama

	var opts []common.ClientOption
	if settings.BaseUrl != "" {
		opts = append(opts, common.WithBaseURL(settings.BaseUrl))
	}
	if logger != nil {
		opts = append(opts, common.WithLogger(logger))
	}
	opts = append(opts, common.WithTimeout(time.Duration(cfg.Parameters.Timeout)*time.Second))

	options := map[string]interface{}{
		"num_ctx":        settings.NumCtx,
		"repeat_last_n":  settings.RepeatLastN,
		"repeat_penalty": settings.RepeatPenalty,
		"temperature":    settings.Temperature,
	}

	var stop []string
	if len(cfg.Parameters.StopSequences) > 0 {
		stop = cfg.Parameters.StopSequences
	}

	return NewClient(settings.Model, options, stop, opts...), nil
}
