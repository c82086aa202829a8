package ollama

import (
	"errors"
	"fmt"
)

// ErrConflictingStop is returned when stop sequences are supplied both in the
// client's configured defaults and as a per-call argument. The call fails
// before any network I/O rather than silently picking one of the two.
var ErrConflictingStop = errors.New("`stop` found in both the input and default params")

// EndpointNotFoundError is returned when the server answers 404, which
// typically means the requested model has not been pulled on that server
type EndpointNotFoundError struct {
	Model string
}

func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf(
		"ollama call failed with status code 404; maybe your model is not found and you should pull it with `ollama pull %s`",
		e.Model)
}

// RequestFailedError is returned for any other non-200 response; Detail
// carries the server-supplied `error` field when one could be extracted
type RequestFailedError struct {
	StatusCode int
	Detail     string
}

func (e *RequestFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ollama call failed with status code %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("ollama call failed with status code %d", e.StatusCode)
}
