package common

import (
	"bufio"
	"io"
)

// maxLineBytes bounds a single response line; multimodal chunks can carry
// fairly large JSON objects, so this is well above the bufio default
const maxLineBytes = 1024 * 1024

// LineStream is a lazy, forward-only iterator over the text lines of a
// streamed HTTP response body. It is not restartable; the underlying
// connection is released when the stream is exhausted, fails, or is closed.
//
// Usage follows the bufio.Scanner idiom:
//
//	for stream.Next() {
//		handle(stream.Text())
//	}
//	if err := stream.Err(); err != nil { ... }
type LineStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	err     error
	closed  bool
}

// NewLineStream wraps a response body in a line iterator. The stream takes
// ownership of the body and closes it itself.
func NewLineStream(body io.ReadCloser) *LineStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &LineStream{
		body:    body,
		scanner: scanner,
	}
}

// Next advances to the next line, blocking until one is available.
// It returns false when the stream is exhausted or a read error occurs;
// in both cases the connection is released.
func (s *LineStream) Next() bool {
	if s.closed {
		return false
	}

	if s.scanner.Scan() {
		return true
	}

	s.err = s.scanner.Err()
	_ = s.Close()
	return false
}

// Text returns the current line without its trailing newline
func (s *LineStream) Text() string {
	return s.scanner.Text()
}

// Err returns the first read error encountered, or nil on clean EOF
func (s *LineStream) Err() error {
	return s.err
}

// Close releases the underlying connection. Safe to call more than once;
// callers that abandon a stream early must call it.
func (s *LineStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
