package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/valentimarco/ollamastream/internal/llm/common"
)

// DefaultBaseURL is where a locally installed Ollama server listens
const DefaultBaseURL = "http://localhost:11434"

// Client is the request adapter for an Ollama-compatible inference server.
// It holds default generation parameters set at construction time; every call
// merges those defaults with per-call overrides into a fresh request body, so
// concurrent calls on one client never share mutable state.
type Client struct {
	*common.BaseClient

	model   string
	options map[string]interface{}
	stop    []string
}

// ensure Client implements the streaming interface
var _ common.StreamingLLM = (*Client)(nil)

// NewClient creates an adapter with the given default model, options map and
// stop sequences. The base URL defaults to the local Ollama port; override it
// with common.WithBaseURL.
func NewClient(model string, options map[string]interface{}, stop []string, opts ...common.ClientOption) *Client {
	return &Client{
		BaseClient: common.NewBaseClient("", DefaultBaseURL, opts...),
		model:      model,
		options:    options,
		stop:       stop,
	}
}

// StreamCompletion issues a streaming generation request on the calling
// goroutine and returns a line iterator over the response body. The iterator
// blocks on each Next until the server produces the next line.
//
// Validation and body construction happen before any network I/O; a stop
// sequence conflict surfaces as ErrConflictingStop without opening a
// connection.
func (c *Client) StreamCompletion(ctx context.Context, payload common.Payload, stop []string, overrides map[string]interface{}) (*common.LineStream, error) {
	body, err := c.buildRequestBody(payload, stop, overrides)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, payload, body)
	if err != nil {
		return nil, err
	}

	return common.NewLineStream(resp.Body), nil
}

// StreamCompletionChan issues the same request from a worker goroutine and
// delivers lines on a channel, suspending between chunks instead of blocking
// the caller. The response body is always released, whether the stream
// completes, fails, or the context is cancelled mid-read. Both channels are
// closed when line production ends; at most one error is ever sent.
func (c *Client) StreamCompletionChan(ctx context.Context, payload common.Payload, stop []string, overrides map[string]interface{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)

	body, err := c.buildRequestBody(payload, stop, overrides)
	if err != nil {
		errs <- err
		close(lines)
		close(errs)
		return lines, errs
	}

	go func() {
		defer close(lines)
		defer close(errs)

		resp, err := c.send(ctx, payload, body)
		if err != nil {
			errs <- err
			return
		}

		stream := common.NewLineStream(resp.Body)
		defer stream.Close()

		count := 0
		for stream.Next() {
			select {
			case lines <- stream.Text():
				count++
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}

		common.LogStreamCompletion(c.Logger, count, stream.Err())
		if err := stream.Err(); err != nil {
			errs <- err
		}
	}()

	return lines, errs
}

// buildRequestBody resolves stop sequences and generation parameters into the
// final JSON body. Client defaults are copied per call; the returned map never
// aliases c.options.
func (c *Client) buildRequestBody(payload common.Payload, stop []string, overrides map[string]interface{}) (map[string]interface{}, error) {
	if len(c.stop) > 0 && len(stop) > 0 {
		return nil, ErrConflictingStop
	}
	if len(c.stop) > 0 {
		stop = c.stop
	}
	if stop == nil {
		// always send a stop list, normalized to empty when none is set
		stop = []string{}
	}

	params := map[string]interface{}{
		"model": c.model,
	}
	if model, ok := overrides["model"]; ok {
		params["model"] = model
	}

	if options, ok := overrides["options"]; ok {
		// an explicit options override replaces the merged map entirely,
		// bypassing stop-list injection
		params["options"] = options
	} else {
		options := copyOptions(c.options)
		options["stop"] = stop
		for k, v := range overrides {
			if k == "model" || k == "options" {
				continue
			}
			options[k] = v
		}
		params["options"] = options
	}

	body := make(map[string]interface{}, len(params)+2)
	if payload.IsChat() {
		body["messages"] = payload.Messages
	} else {
		images := payload.Images
		if images == nil {
			images = []string{}
		}
		body["prompt"] = payload.Prompt
		body["images"] = images
	}
	for k, v := range params {
		body[k] = v
	}

	return body, nil
}

// send issues the HTTP POST and classifies non-200 statuses. On success the
// caller owns resp.Body; on failure the body has been drained and closed.
func (c *Client) send(ctx context.Context, payload common.Payload, body map[string]interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	model := fmt.Sprintf("%v", body["model"])
	url := common.JoinURL(c.BaseURL, endpointPath(payload))
	common.LogStreamRequest(c.Logger, "ollama", model, url, payload)

	req, err := common.CreateJSONRequest(ctx, url, c.APIKey, jsonData)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// transport failures propagate as-is, no reclassification
		common.LogRequestFailure(c.Logger, err)
		return nil, err
	}

	common.LogHTTPResponse(c.Logger, resp.StatusCode, resp.Header.Get("Content-Type"))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, &EndpointNotFoundError{Model: model}
		}

		// error bodies are not streamed; attempt to pull the detail field
		var detail string
		if raw, err := io.ReadAll(resp.Body); err == nil {
			var errResp ErrorResponse
			if err := json.Unmarshal(raw, &errResp); err == nil {
				detail = errResp.Error
			}
		}
		return nil, &RequestFailedError{StatusCode: resp.StatusCode, Detail: detail}
	}

	return resp, nil
}

// endpointPath selects the API path from the payload form
func endpointPath(payload common.Payload) string {
	if payload.IsChat() {
		return chatPath
	}
	return generatePath
}

// copyOptions deep-copies an options map so per-call merging cannot mutate
// the client's defaults. Nested option maps are copied recursively; slices
// are duplicated one level deep.
func copyOptions(options map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(options))
	for k, v := range options {
		switch val := v.(type) {
		case map[string]interface{}:
			out[k] = copyOptions(val)
		case []string:
			out[k] = append([]string(nil), val...)
		case []interface{}:
			out[k] = append([]interface{}(nil), val...)
		default:
			out[k] = v
		}
	}
	return out
}
