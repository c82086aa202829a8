package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valentimarco/ollamastream/internal/config"
	"github.com/valentimarco/ollamastream/internal/llm/common"
	"github.com/valentimarco/ollamastream/internal/llm/ollama"
	"github.com/valentimarco/ollamastream/internal/registry"

	"github.com/fatih/color"
)

// App represents the main application and holds its dependencies
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	verbose bool
}

// NewApp creates a new App instance with the provided configuration, logger, and verbose setting
func NewApp(cfg *config.Config, logger *slog.Logger, verbose bool) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		verbose: verbose,
	}
}

// Run resolves the provider, streams a completion for the payload, and writes
// content tokens to out incrementally as lines arrive from the server
func (a *App) Run(ctx context.Context, providerName string, payload common.Payload, out io.Writer) error {
	if providerName == "" {
		providerName = a.cfg.Parameters.DefaultProvider
	}

	client, err := registry.CreateClient(providerName, a.cfg, a.logger)
	if err != nil {
		return err
	}

	if a.verbose {
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s streaming from %s (%s)\n",
			cyan("▸"), providerName, a.cfg.Providers.Ollama.Model)
	}

	stream, err := client.StreamCompletion(ctx, payload, nil, nil)
	if err != nil {
		return err
	}
	defer stream.Close()

	wroteContent := false
	for stream.Next() {
		token, done, err := extractContent(stream.Text(), payload.IsChat())
		if err != nil {
			// malformed chunks are logged and skipped, not fatal
			a.logger.Warn("skipping malformed chunk", "error", err)
			continue
		}
		if token != "" {
			if _, err := io.WriteString(out, token); err != nil {
				return err
			}
			wroteContent = true
		}
		if done {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("stream interrupted: %w", err)
	}

	// terminate the output with a newline for shell pipelines
	if wroteContent {
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}

	return nil
}

// extractContent pulls the content token and done flag out of one NDJSON line
func extractContent(line string, chat bool) (string, bool, error) {
	if chat {
		var chunk ollama.ChatChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", false, err
		}
		return chunk.Message.Content, chunk.Done, nil
	}

	var chunk ollama.GenerateChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		return "", false, err
	}
	return chunk.Response, chunk.Done, nil
}
