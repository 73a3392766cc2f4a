// Package base provides the authenticated HTTP client for the Currents API.
package base

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apierrors "github.com/olgasafonova/currents-mcp-server/internal/errors"
	"github.com/olgasafonova/currents-mcp-server/metrics"
)

const (
	// DefaultBaseURL is the Currents API v1 endpoint
	DefaultBaseURL = "https://api.currentsapi.services/v1"

	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the server to the provider
	DefaultUserAgent = "currents-mcp-server/1.0 (github.com/olgasafonova/currents-mcp-server)"

	// AuthHeader carries the raw API key
	AuthHeader = "Authorization"
)

// Request is a single outbound call to the provider.
type Request struct {
	Method   string            // only GET is supported; empty means GET
	Endpoint string            // path relative to the base URL, e.g. "/search"
	Params   map[string]string // empty values are never sent
}

// Client performs authenticated GET requests against the Currents API.
// It holds no mutable state after construction.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	BaseURL    string
	UserAgent  string

	apiKey  string
	timeout time.Duration
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithBaseURL overrides the provider base URL (used by tests and proxies)
func WithBaseURL(u string) ClientOption {
	return func(client *Client) {
		client.BaseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request timeout, applied after all other options
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.timeout = d
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		client.UserAgent = ua
	}
}

// NewClient creates a provider client. The API key is resolved once here;
// a missing key fails construction rather than the first call.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apierrors.NewConfigurationError("CURRENTS_API_KEY", "API key is required")
	}

	c := &Client{
		HTTPClient: newHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		BaseURL:    DefaultBaseURL,
		UserAgent:  DefaultUserAgent,
		apiKey:     apiKey,
	}

	for _, opt := range opts {
		opt(c)
	}

	// A client passed through WithHTTPClient belongs to the caller
	if c.timeout > 0 {
		hc := *c.HTTPClient
		hc.Timeout = c.timeout
		c.HTTPClient = &hc
	}

	return c, nil
}

// Get performs a GET against endpoint with the given query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Params: params})
}

// Do executes r and returns the parsed JSON body. Numbers are kept as
// json.Number so the payload re-encodes without loss.
func (c *Client) Do(ctx context.Context, r Request) (any, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet {
		return nil, &apierrors.UnsupportedMethodError{Method: r.Method}
	}
	if !strings.HasPrefix(r.Endpoint, "/") {
		return nil, apierrors.NewValidationError("endpoint", r.Endpoint, "must start with /")
	}

	reqURL := c.BaseURL + r.Endpoint
	if query := EncodeParams(r.Params); query != "" {
		reqURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(AuthHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	start := time.Now()
	payload, statusCode, err := c.execute(req)
	duration := time.Since(start)

	metrics.RecordAPICall(r.Endpoint, duration.Seconds(), err == nil, apierrors.Code(err))
	c.Logger.Debug("Provider request",
		"endpoint", r.Endpoint,
		"status", statusCode,
		"duration_ms", duration.Milliseconds(),
		"error", err,
	)

	return payload, err
}

// execute sends req once and maps the response to a payload or typed error.
func (c *Client) execute(req *http.Request) (any, int, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	body, err := readAndClose(resp)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, resp.StatusCode, &apierrors.AuthenticationError{}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resp.StatusCode, &apierrors.RateLimitError{}
	case resp.StatusCode != http.StatusOK:
		return nil, resp.StatusCode, apierrors.NewUpstreamError(resp.StatusCode, truncate(string(body), 2000))
	}

	payload, err := DecodeJSON(body)
	if err != nil {
		return nil, resp.StatusCode, &apierrors.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 2000),
			Err:        err,
		}
	}
	return payload, resp.StatusCode, nil
}

// DecodeJSON parses a complete JSON document, keeping numbers as json.Number.
func DecodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}
	return payload, nil
}

// EncodeParams builds a sorted query string from params, skipping empty values.
func EncodeParams(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if k == "" || v == "" {
			continue
		}
		values.Set(k, v)
	}
	return values.Encode()
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

// truncate shortens a string to at most maxLen bytes on a rune boundary,
// adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with a traced transport
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}
