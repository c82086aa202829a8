package common

import (
	"context"
	"log/slog"

	"github.com/valentimarco/ollamastream/internal/config"
)

// StreamingLLM is the client interface; all provider clients must implement this.
// Both methods issue a single best-effort request and expose the response body
// as a sequence of decoded text lines. No retries, no backoff.
type StreamingLLM interface {
	// StreamCompletion issues the request on the calling goroutine and returns
	// a blocking line iterator over the response body
	StreamCompletion(ctx context.Context, payload Payload, stop []string, overrides map[string]interface{}) (*LineStream, error)

	// StreamCompletionChan issues the request from a worker goroutine and
	// delivers lines on the returned channel; at most one terminal error is
	// sent on the error channel. Both channels are closed when the stream ends.
	StreamCompletionChan(ctx context.Context, payload Payload, stop []string, overrides map[string]interface{}) (<-chan string, <-chan error)
}

// Provider is the unified interface that every registered backend must implement.
// The registry queries it for metadata and uses it as a client factory.
type Provider interface {
	ProviderName() string
	Describe() ProviderInfo
	RequiresAPIKey() bool
	CreateClient(cfg *config.Config, logger *slog.Logger) (StreamingLLM, error)
}
