package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valentimarco/ollamastream/internal/llm/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatPayload(content string) common.Payload {
	return common.Payload{
		Messages: []common.Message{{Role: "user", Content: content}},
	}
}

func TestBuildRequestBody(t *testing.T) {
	defaults := map[string]interface{}{"temperature": 0.8}

	tests := []struct {
		name      string
		client    *Client
		payload   common.Payload
		stop      []string
		overrides map[string]interface{}
		wantErr   error
		validate  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:    "chat payload includes messages and omits prompt",
			client:  NewClient("llama2", defaults, nil),
			payload: chatPayload("hi"),
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body, "messages")
				assert.NotContains(t, body, "prompt")
				assert.NotContains(t, body, "images")
				assert.Equal(t, "llama2", body["model"])
			},
		},
		{
			name:    "empty messages fall back to prompt form",
			client:  NewClient("llama2", defaults, nil),
			payload: common.Payload{Messages: []common.Message{}, Prompt: "once upon a time"},
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.NotContains(t, body, "messages")
				assert.Equal(t, "once upon a time", body["prompt"])
				assert.Equal(t, []string{}, body["images"], "images default to an empty list")
			},
		},
		{
			name:    "prompt payload carries images",
			client:  NewClient("llava", defaults, nil),
			payload: common.Payload{Prompt: "describe this", Images: []string{"aGk="}},
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []string{"aGk="}, body["images"])
			},
		},
		{
			name:    "conflicting stop sequences fail fast",
			client:  NewClient("llama2", defaults, []string{"default-stop"}),
			payload: chatPayload("hi"),
			stop:    []string{"call-stop"},
			wantErr: ErrConflictingStop,
		},
		{
			name:    "default stop takes precedence when only defaults are set",
			client:  NewClient("llama2", defaults, []string{"END"}),
			payload: chatPayload("hi"),
			validate: func(t *testing.T, body map[string]interface{}) {
				options := body["options"].(map[string]interface{})
				assert.Equal(t, []string{"END"}, options["stop"])
			},
		},
		{
			name:    "per-call stop is used when no default exists",
			client:  NewClient("llama2", defaults, nil),
			payload: chatPayload("hi"),
			stop:    []string{"###"},
			validate: func(t *testing.T, body map[string]interface{}) {
				options := body["options"].(map[string]interface{})
				assert.Equal(t, []string{"###"}, options["stop"])
			},
		},
		{
			name:    "no stop anywhere normalizes to an empty list",
			client:  NewClient("llama2", defaults, nil),
			payload: chatPayload("hi"),
			validate: func(t *testing.T, body map[string]interface{}) {
				options := body["options"].(map[string]interface{})
				assert.Equal(t, []string{}, options["stop"])
			},
		},
		{
			name:      "model override replaces the model field only",
			client:    NewClient("llama2", defaults, nil),
			payload:   chatPayload("hi"),
			overrides: map[string]interface{}{"model": "mistral:7b"},
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "mistral:7b", body["model"])
				options := body["options"].(map[string]interface{})
				assert.Equal(t, 0.8, options["temperature"])
				assert.NotContains(t, options, "model", "model override must not leak into options")
			},
		},
		{
			name:    "explicit options override replaces the map verbatim",
			client:  NewClient("llama2", defaults, []string{"END"}),
			payload: chatPayload("hi"),
			overrides: map[string]interface{}{
				"options": map[string]interface{}{"top_k": 40},
			},
			validate: func(t *testing.T, body map[string]interface{}) {
				options := body["options"].(map[string]interface{})
				assert.Equal(t, map[string]interface{}{"top_k": 40}, options,
					"no merge with defaults, no stop injection")
			},
		},
		{
			name:      "remaining override keys merge into options and win on conflict",
			client:    NewClient("llama2", defaults, nil),
			payload:   chatPayload("hi"),
			overrides: map[string]interface{}{"temperature": 0.1, "seed": 42},
			validate: func(t *testing.T, body map[string]interface{}) {
				options := body["options"].(map[string]interface{})
				assert.Equal(t, 0.1, options["temperature"])
				assert.Equal(t, 42, options["seed"])
				assert.Equal(t, []string{}, options["stop"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.client.buildRequestBody(tt.payload, tt.stop, tt.overrides)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, body)
				return
			}

			require.NoError(t, err)
			tt.validate(t, body)
		})
	}
}

func TestBuildRequestBodyDoesNotMutateDefaults(t *testing.T) {
	defaults := map[string]interface{}{"temperature": 0.8}
	client := NewClient("llama2", defaults, nil)

	_, err := client.buildRequestBody(chatPayload("hi"), nil, map[string]interface{}{"temperature": 0.1})
	require.NoError(t, err)

	// the merge must operate on a per-call copy
	assert.Equal(t, map[string]interface{}{"temperature": 0.8}, defaults)
	assert.NotContains(t, defaults, "stop")
}

func TestStreamCompletionScenario(t *testing.T) {
	// the canonical localhost scenario: chat payload, defaults
	// {model: llama2, options: {temperature: 0.8}}, no stop, no overrides
	var gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"a":1}`)
		fmt.Fprintln(w, `{"a":2}`)
	}))
	defer server.Close()

	client := NewClient("llama2", map[string]interface{}{"temperature": 0.8}, nil,
		common.WithBaseURL(server.URL))

	stream, err := client.StreamCompletion(context.Background(), chatPayload("hi"), nil, nil)
	require.NoError(t, err)

	var lines []string
	for stream.Next() {
		lines = append(lines, stream.Text())
	}
	require.NoError(t, stream.Err())

	// streamed lines returned verbatim, in order
	assert.Equal(t, []string{`{"a":1}`, `{"a":2}`}, lines)

	// one POST to the chat endpoint with the expected merged body
	assert.Equal(t, "/api/chat", gotPath)
	assert.Equal(t, map[string]interface{}{
		"messages": []interface{}{map[string]interface{}{"role": "user", "content": "hi"}},
		"model":    "llama2",
		"options":  map[string]interface{}{"temperature": 0.8, "stop": []interface{}{}},
	}, gotBody)
}

func TestStreamCompletionUsesGenerateEndpointForPrompts(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprintln(w, `{"response":"ok","done":true}`)
	}))
	defer server.Close()

	client := NewClient("llama2", nil, nil, common.WithBaseURL(server.URL))

	stream, err := client.StreamCompletion(context.Background(), common.Payload{Prompt: "hi"}, nil, nil)
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "/api/generate", gotPath)
}

func TestStreamCompletionStopConflictSkipsNetwork(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := NewClient("llama2", nil, []string{"END"}, common.WithBaseURL(server.URL))

	_, err := client.StreamCompletion(context.Background(), chatPayload("hi"), []string{"STOP"}, nil)
	assert.ErrorIs(t, err, ErrConflictingStop)
	assert.Zero(t, requests.Load(), "conflict must surface before any network call")
}

func TestStreamCompletionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{"error":"model 'nope' not found"}`)
	}))
	defer server.Close()

	client := NewClient("nope", nil, nil, common.WithBaseURL(server.URL))

	_, err := client.StreamCompletion(context.Background(), chatPayload("hi"), nil, nil)

	var notFound *EndpointNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Model)
	assert.Contains(t, err.Error(), "ollama pull nope")
}

func TestStreamCompletionRequestFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, `{"error":"boom"}`)
	}))
	defer server.Close()

	client := NewClient("llama2", nil, nil, common.WithBaseURL(server.URL))

	_, err := client.StreamCompletion(context.Background(), chatPayload("hi"), nil, nil)

	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, http.StatusInternalServerError, failed.StatusCode)
	assert.Contains(t, err.Error(), "boom")
}

func TestStreamCompletionRequestFailedWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintln(w, "upstream unavailable") // not JSON
	}))
	defer server.Close()

	client := NewClient("llama2", nil, nil, common.WithBaseURL(server.URL))

	_, err := client.StreamCompletion(context.Background(), chatPayload("hi"), nil, nil)

	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, http.StatusBadGateway, failed.StatusCode)
	assert.Empty(t, failed.Detail)
}

func TestStreamCompletionChan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"a":1}`)
		fmt.Fprintln(w, `{"a":2}`)
	}))
	defer server.Close()

	client := NewClient("llama2", nil, nil, common.WithBaseURL(server.URL))

	lines, errs := client.StreamCompletionChan(context.Background(), chatPayload("hi"), nil, nil)

	var got []string
	for line := range lines {
		got = append(got, line)
	}

	assert.Equal(t, []string{`{"a":1}`, `{"a":2}`}, got)
	assert.NoError(t, <-errs, "error channel must close without a value on success")
}

func TestStreamCompletionChanStopConflict(t *testing.T) {
	client := NewClient("llama2", nil, []string{"END"})

	lines, errs := client.StreamCompletionChan(context.Background(), chatPayload("hi"), []string{"STOP"}, nil)

	_, open := <-lines
	assert.False(t, open, "line channel must be closed immediately")
	assert.ErrorIs(t, <-errs, ErrConflictingStop)
}

func TestStreamCompletionChanDeliversHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("llama2", nil, nil, common.WithBaseURL(server.URL))

	lines, errs := client.StreamCompletionChan(context.Background(), chatPayload("hi"), nil, nil)

	_, open := <-lines
	assert.False(t, open)

	var notFound *EndpointNotFoundError
	assert.ErrorAs(t, <-errs, &notFound)
}

func TestStreamCompletionChanHonorsCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"a":1}`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release // hold the stream open
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient("llama2", nil, nil,
		common.WithBaseURL(server.URL), common.WithTimeout(0))

	lines, errs := client.StreamCompletionChan(ctx, chatPayload("hi"), nil, nil)

	// consume the first line, then abandon the stream
	select {
	case line := <-lines:
		assert.Equal(t, `{"a":1}`, line)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first line")
	}
	cancel()

	// the worker must terminate and close both channels
	for range lines {
	}
	err, open := <-errs
	if open && err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
