// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion is a minimal client for the Notion REST API: the three
// read endpoints the mirror needs (block children, data source query, page
// retrieve) plus global search, with rate-limit-aware retries.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/lotion/pkg/types"
)

// apiBase is the Notion API origin. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.notion.com"

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const (
	apiVersion        = "2025-09-03"
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
	pageSize          = 100
)

// Client talks to the Notion API on behalf of one integration token. All
// methods are safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	userAgent  string
	maxRetries int
}

// NewClient builds a Client from an integration token and HTTP settings.
func NewClient(apiKey string, cfg types.HTTPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		userAgent:  cfg.UserAgent,
		maxRetries: defaultMaxRetries,
	}
}

// apiErrorBody is the JSON error envelope Notion returns on failures.
type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do performs one API call and decodes the response into out. HTTP 429 is
// retried with exponential backoff doubling from RetryBaseDelay (1 s, 2 s,
// 4 s); once the budget is spent the call fails with *RateLimitError. Any
// other non-2xx status fails immediately with *APIError carrying the
// decoded code and message. Transport errors are returned unchanged.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, apiBase+path, reader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Notion-Version", apiVersion)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			return nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= c.maxRetries {
				return &RateLimitError{Attempts: attempt + 1}
			}
			backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb apiErrorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.Message != "" {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
		}
		return apiErr
	}
}
