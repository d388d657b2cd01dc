// Package transport wraps outbound HTTP calls with bearer-token injection
// and uniform status-code-to-error mapping.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"memefeed/internal/models"
	"memefeed/internal/observability"
)

// Client issues JSON and multipart requests against the API base URL.
// It does not retry; errors map to the AppError taxonomy and propagate
// unmodified to callers.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *observability.RequestLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests, custom timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  observability.NewRequestLogger("transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOptions carries the optional parts of a request. JSON takes
// precedence over Body when both are set.
type RequestOptions struct {
	// Token, when non-empty, is sent as an Authorization bearer credential.
	Token string
	// JSON, when non-nil, is encoded as the application/json request body.
	JSON any
	// Body and ContentType supply a raw request body (multipart uploads).
	Body        io.Reader
	ContentType string
}

// Do performs one HTTP request and decodes the JSON response into out when
// out is non-nil. Status mapping: 401 unauthorized, 404 not found, any other
// non-2xx a request failure carrying the status; network errors are
// transport failures.
func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions, out any) error {
	var body io.Reader
	contentType := opts.ContentType
	if opts.JSON != nil {
		encoded, err := json.Marshal(opts.JSON)
		if err != nil {
			return models.NewInternalError(err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	} else if opts.Body != nil {
		body = opts.Body
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return models.NewInternalError(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	correlationID := observability.ExtractCorrelationID(ctx)
	if correlationID == "" {
		correlationID = observability.GenerateCorrelationID()
		ctx = observability.WithCorrelationID(ctx, correlationID)
	}
	req.Header.Set("X-Request-ID", correlationID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.LogError(ctx, method, path, err)
		return models.NewTransportError(err)
	}
	defer resp.Body.Close()
	c.logger.LogRequest(ctx, method, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(method, path, resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewInternalError(fmt.Errorf("decoding %s %s response: %w", method, path, err))
	}
	return nil
}

// checkStatus maps non-2xx responses to the error taxonomy.
func checkStatus(method, path string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return models.NewUnauthorizedError(fmt.Sprintf("%s %s: unauthorized", method, path))
	case resp.StatusCode == http.StatusNotFound:
		return models.NewNotFoundError(fmt.Sprintf("%s %s: not found", method, path))
	default:
		return models.NewRequestFailedError(resp.StatusCode,
			fmt.Sprintf("%s %s: request failed with status %d", method, path, resp.StatusCode))
	}
}
