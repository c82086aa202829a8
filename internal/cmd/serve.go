package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/valentimarco/ollamastream/internal/mockserver"

	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveModels []string
	serveDelay  time.Duration
)

// serveCmd runs a local fake inference endpoint for smoke testing
var serveCmd = &cobra.Command{
	Use:   "mock-serve",
	Short: "Run a local fake Ollama endpoint",
	Long: `Run a local HTTP server that emulates the Ollama generation API,
streaming NDJSON chunks that echo the request back. Useful for trying the
client without a real model:

  ollamastream mock-serve --addr :11434 &
  echo "hello" | ollamastream`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := mockserver.New(
			mockserver.WithModels(serveModels...),
			mockserver.WithChunkDelay(serveDelay),
		)

		errs := make(chan error, 1)
		go func() {
			errs <- server.Start(serveAddr)
		}()

		fmt.Fprintf(cmd.ErrOrStderr(), "mock server listening on %s (models: %v)\n", serveAddr, serveModels)

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
			fmt.Fprintln(cmd.ErrOrStderr(), "shutting down")
			return server.Shutdown(context.Background())
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":11434", "address to listen on")
	serveCmd.Flags().StringArrayVar(&serveModels, "model", []string{"llama2"}, "model names the server pretends to have pulled (repeatable)")
	serveCmd.Flags().DurationVar(&serveDelay, "chunk-delay", 50*time.Millisecond, "pause between streamed chunks")

	rootCmd.AddCommand(serveCmd)
}
