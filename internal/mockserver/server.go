// Package mockserver provides a local stand-in for an Ollama server. It
// speaks just enough of the generation API to smoke-test the streaming
// client: NDJSON chunk streaming, model-not-found 404s, and JSON error
// bodies on bad requests.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/valentimarco/ollamastream/internal/llm/common"
	"github.com/valentimarco/ollamastream/internal/llm/ollama"
)

const shutdownGracePeriod = 5 * time.Second

// Server is an echo application emulating the inference endpoints
type Server struct {
	app        *echo.Echo
	models     map[string]struct{}
	chunkDelay time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithModels sets the models the server pretends to have pulled
func WithModels(models ...string) Option {
	return func(s *Server) {
		s.models = make(map[string]struct{}, len(models))
		for _, m := range models {
			s.models[m] = struct{}{}
		}
	}
}

// WithChunkDelay inserts a pause between streamed chunks, making the
// incremental delivery visible to a human watching the client
func WithChunkDelay(d time.Duration) Option {
	return func(s *Server) {
		s.chunkDelay = d
	}
}

// New constructs a mock server wired with routing and middleware
func New(opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())

	s := &Server{
		app:    e,
		models: map[string]struct{}{"llama2": {}},
	}

	for _, opt := range opts {
		opt(s)
	}

	e.POST("/api/chat", s.handleChat)
	e.POST("/api/generate", s.handleGenerate)

	return s
}

// Handler exposes the underlying handler so tests can mount the server
// on an httptest listener
func (s *Server) Handler() http.Handler {
	return s.app
}

// Start serves on the given address until Shutdown is called
func (s *Server) Start(addr string) error {
	if err := s.app.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server, allowing in-flight streams to drain
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()
	return s.app.Shutdown(ctx)
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []common.Message       `json:"messages"`
	Options  map[string]interface{} `json:"options"`
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Images  []string               `json:"images"`
	Options map[string]interface{} `json:"options"`
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ollama.ErrorResponse{Error: "invalid request body"})
	}
	if err := s.checkModel(c, req.Model); err != nil {
		return err
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, ollama.ErrorResponse{Error: "messages is required"})
	}

	reply := "You said: " + req.Messages[len(req.Messages)-1].Content

	return s.streamChunks(c, strings.Fields(reply), func(token string, done bool) interface{} {
		chunk := ollama.ChatChunk{
			Model:     req.Model,
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
			Done:      done,
		}
		if done {
			chunk.Message = common.Message{Role: "assistant"}
			chunk.PromptEvalCount = len(req.Messages)
			chunk.EvalCount = len(reply)
		} else {
			chunk.Message = common.Message{Role: "assistant", Content: token}
		}
		return chunk
	})
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ollama.ErrorResponse{Error: "invalid request body"})
	}
	if err := s.checkModel(c, req.Model); err != nil {
		return err
	}

	reply := "Echo: " + req.Prompt

	return s.streamChunks(c, strings.Fields(reply), func(token string, done bool) interface{} {
		chunk := ollama.GenerateChunk{
			Model:     req.Model,
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
			Done:      done,
		}
		if done {
			chunk.EvalCount = len(reply)
		} else {
			chunk.Response = token
		}
		return chunk
	})
}

// checkModel replies 404 with the server's characteristic error body when
// the requested model has not been "pulled"
func (s *Server) checkModel(c echo.Context, model string) error {
	if model == "" {
		return c.JSON(http.StatusBadRequest, ollama.ErrorResponse{Error: "model is required"})
	}
	if _, ok := s.models[model]; !ok {
		return c.JSON(http.StatusNotFound, ollama.ErrorResponse{
			Error: fmt.Sprintf("model '%s' not found, try pulling it first", model),
		})
	}
	return nil
}

// streamChunks writes one NDJSON line per token, flushing after each so the
// client sees lines as they are produced, then a final done chunk
func (s *Server) streamChunks(c echo.Context, tokens []string, build func(token string, done bool) interface{}) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(resp)
	for i, token := range tokens {
		// each token after the first carries its separating space
		if i > 0 {
			token = " " + token
		}
		if err := enc.Encode(build(token, false)); err != nil {
			return err
		}
		resp.Flush()

		if s.chunkDelay > 0 {
			time.Sleep(s.chunkDelay)
		}
	}

	if err := enc.Encode(build("", true)); err != nil {
		return err
	}
	resp.Flush()

	return nil
}
