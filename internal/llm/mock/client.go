package mock

import (
	"context"
	"io"
	"strings"

	"github.com/valentimarco/ollamastream/internal/llm/common"
)

// Client implements common.StreamingLLM for testing; it replays canned lines
// without touching the network
type Client struct {
	// Lines are yielded verbatim by both streaming variants
	Lines []string

	// Err, when set, is surfaced instead of any lines
	Err error
}

var _ common.StreamingLLM = (*Client)(nil)

// StreamCompletion returns the canned lines as a blocking stream
func (c *Client) StreamCompletion(ctx context.Context, payload common.Payload, stop []string, overrides map[string]interface{}) (*common.LineStream, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	body := io.NopCloser(strings.NewReader(strings.Join(c.Lines, "\n")))
	return common.NewLineStream(body), nil
}

// StreamCompletionChan returns the canned lines on a channel
func (c *Client) StreamCompletionChan(ctx context.Context, payload common.Payload, stop []string, overrides map[string]interface{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)
		defer close(errs)

		if c.Err != nil {
			errs <- c.Err
			return
		}
		for _, line := range c.Lines {
			select {
			case lines <- line:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return lines, errs
}
