// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import "fmt"

// APIError is a non-rate-limit failure reported by the Notion API. It is
// fatal to the single call site but never to a batch: the engine catches it
// per page, counts it, and keeps going.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion API error (HTTP %d, %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API error (HTTP %d): %s", e.Status, e.Message)
}

// RateLimitError means the retry budget was exhausted while the API kept
// answering 429. It propagates exactly like APIError.
type RateLimitError struct {
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("notion API rate limit exceeded after %d attempts", e.Attempts)
}
