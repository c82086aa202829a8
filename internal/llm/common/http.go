package common

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
)

// HTTP utility functions provide standardized request construction

// CreateJSONRequest creates a standard JSON API request; the Authorization
// header is only set when an API key is present (local servers don't use one)
func CreateJSONRequest(ctx context.Context, url, apiKey string, jsonData []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}

	return req, nil
}

// JoinURL appends an API path to a base URL, normalizing slashes
func JoinURL(baseURL, path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(baseURL, "/"), strings.TrimPrefix(path, "/"))
}
