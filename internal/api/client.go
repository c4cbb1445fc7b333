package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arodin/nutrisync/internal/config"
	"github.com/arodin/nutrisync/internal/logger"
	"github.com/arodin/nutrisync/internal/store"
)

// ErrDecode wraps failures to decode a response body, so callers can tell
// them apart from transport faults.
var ErrDecode = errors.New("response decoding failed")

// Response carries the outcome of a single HTTP call without collapsing
// non-2xx statuses into errors; the request executor owns that
// classification. Body is nil when the response carried no payload or the
// status was not successful.
type Response[T any] struct {
	Code   int
	Status string
	Body   *T
}

// Successful reports whether the response status is in the 2xx range.
func (r *Response[T]) Successful() bool {
	return r.Code >= 200 && r.Code < 300
}

// Client handles all HTTP communication with the nutrition backend.
// Outgoing requests are decorated with a bearer token and transparently
// retried once after a token refresh (see authTransport).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with the given configuration.
func NewClient(cfg *config.Config, tokens *store.TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: newAuthTransport(cfg, tokens),
		},
	}
}

// BuildURL constructs a full URL for the given endpoint
func (c *Client) BuildURL(endpoint string) string {
	return c.baseURL + endpoint
}

// Get makes a GET request to the specified endpoint
func Get[T any](ctx context.Context, c *Client, endpoint string) (*Response[T], error) {
	return execute[T](ctx, c, http.MethodGet, endpoint, nil)
}

// Post makes a POST request to the specified endpoint
func Post[T any](ctx context.Context, c *Client, endpoint string, body interface{}) (*Response[T], error) {
	return execute[T](ctx, c, http.MethodPost, endpoint, body)
}

func execute[T any](ctx context.Context, c *Client, method, endpoint string, body interface{}) (*Response[T], error) {
	fullURL := c.BuildURL(endpoint)
	start := time.Now()
	logger.Debug("Starting %s request to %s", method, fullURL)

	var requestBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request body: %w", err)
		}
		requestBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, requestBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		logger.Error("Request to %s failed after %v: %v", fullURL, elapsed, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	logger.Debug("Request to %s completed in %v with status %d", fullURL, elapsed, resp.StatusCode)

	result := &Response[T]{Code: resp.StatusCode, Status: resp.Status}

	if !result.Successful() {
		// Drain so the connection can be reused; error bodies are not
		// part of the executor's contract.
		_, _ = io.Copy(io.Discard, resp.Body)
		return result, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if len(data) == 0 {
		return result, nil
	}

	decoded := new(T)
	if err := json.Unmarshal(data, decoded); err != nil {
		logger.Error("%s: error decoding response: %v", fullURL, err)
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	result.Body = decoded
	return result, nil
}

// BuildURLWithParams properly builds an endpoint with query parameters
func BuildURLWithParams(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}

	parts := strings.SplitN(endpoint, "?", 2)
	baseURL := parts[0]

	values := url.Values{}
	if len(parts) > 1 {
		existingParams, _ := url.ParseQuery(parts[1])
		values = existingParams
	}

	for key, value := range params {
		values.Set(key, value)
	}

	if len(values) > 0 {
		return baseURL + "?" + values.Encode()
	}
	return baseURL
}
