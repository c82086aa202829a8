package common

import (
	"fmt"
	"log/slog"
)

// logging helpers keep request/response logging consistent across providers;
// all of them tolerate a nil logger

// LogStreamRequest logs standardized request information before a streaming call
func LogStreamRequest(logger *slog.Logger, providerName, modelName, url string, payload Payload) {
	if logger == nil {
		return
	}

	mode := "completion"
	if payload.IsChat() {
		mode = "chat"
	}

	logger.Debug(fmt.Sprintf("Sending streaming request to %s", providerName),
		"model", modelName,
		"mode", mode,
		"message_count", len(payload.Messages),
		"image_count", len(payload.Images),
		"url", url)
}

// LogHTTPResponse logs basic HTTP response information
func LogHTTPResponse(logger *slog.Logger, statusCode int, contentType string) {
	if logger == nil {
		return
	}
	logger.Debug("Received API response",
		"status_code", statusCode,
		"content_type", contentType)
}

// LogStreamCompletion logs the end of line production for a stream
func LogStreamCompletion(logger *slog.Logger, lineCount int, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Error("Stream ended with error",
			"lines", lineCount,
			"error", err)
		return
	}
	logger.Debug("Stream completed",
		"lines", lineCount)
}

// LogRequestFailure logs request execution failures
func LogRequestFailure(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("API request failed",
		"error", err)
}

// LogJSONUnmarshalError logs JSON parsing errors with context
func LogJSONUnmarshalError(logger *slog.Logger, err error, responseBody string) {
	if logger == nil {
		return
	}
	logger.Error("Failed to unmarshal JSON response",
		"error", err,
		"response_body", responseBody)
}
