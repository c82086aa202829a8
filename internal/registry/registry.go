package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/valentimarco/ollamastream/internal/config"
	"github.com/valentimarco/ollamastream/internal/llm/common"
	"github.com/valentimarco/ollamastream/internal/llm/mock"
	"github.com/valentimarco/ollamastream/internal/llm/ollama"
)

// AllProviders contains registered LLM providers, populated at process start.
// The host selects a backend by name; adding a provider means adding it here.
var AllProviders = map[string]common.Provider{
	"mock":   mock.New(),
	"ollama": ollama.New(),
}

// CreateClient creates a client instance using the central registry;
// returns an error if the provider is not registered or creation fails
func CreateClient(name string, cfg *config.Config, logger *slog.Logger) (common.StreamingLLM, error) {
	provider, exists := AllProviders[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider '%s'. Available providers: %s", name, availableProviders())
	}

	return provider.CreateClient(cfg, logger)
}

// Describe returns display metadata for a registered provider
func Describe(name string) (common.ProviderInfo, error) {
	provider, exists := AllProviders[name]
	if !exists {
		return common.ProviderInfo{}, fmt.Errorf("unsupported provider '%s'. Available providers: %s", name, availableProviders())
	}

	return provider.Describe(), nil
}

// GetAvailableProviders returns a sorted list of registered provider names
func GetAvailableProviders() []string {
	providers := make([]string, 0, len(AllProviders))
	for name := range AllProviders {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

// IsProviderRegistered checks if provider is registered
func IsProviderRegistered(name string) bool {
	_, exists := AllProviders[name]
	return exists
}

// ProviderRequiresAPIKey checks if provider requires an API key;
// returns false if the provider is not registered
func ProviderRequiresAPIKey(name string) bool {
	provider, exists := AllProviders[name]
	if !exists {
		return false
	}

	return provider.RequiresAPIKey()
}

// availableProviders returns a comma-separated string of registered names
func availableProviders() string {
	providers := GetAvailableProviders()
	if len(providers) == 0 {
		return "none"
	}
	return strings.Join(providers, ", ")
}
