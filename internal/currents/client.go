// Package currents implements the Currents news API operations and the MCP
// wrappers that expose them as tools.
package currents

import (
	"context"
	"log/slog"
	"time"

	"github.com/olgasafonova/currents-mcp-server/metrics"
	"github.com/olgasafonova/currents-mcp-server/tracing"
)

// Provider endpoints, relative to the API base URL
const (
	EndpointSearch              = "/search"
	EndpointLatestNews          = "/latest-news"
	EndpointAvailableLanguages  = "/available/languages"
	EndpointAvailableRegions    = "/available/regions"
	EndpointAvailableCategories = "/available/category"
)

// DateFormat is the layout the provider expects for start_date and end_date
const DateFormat = "2006-01-02T15:04:05+00:00"

// DefaultSearchWindow is how far back search_news looks when no start_date is given
const DefaultSearchWindow = time.Hour

// Requester performs one GET against the provider and returns the parsed body.
// *base.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, endpoint string, params map[string]string) (any, error)
}

// Client exposes the provider's operations on top of a Requester
type Client struct {
	requester Requester
	logger    *slog.Logger
	now       func() time.Time
	strict    bool
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithClock overrides the time source used for the default search window
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithStrictSchema makes schema violations fail the operation instead of
// being logged and forwarded.
func WithStrictSchema(strict bool) ClientOption {
	return func(c *Client) {
		c.strict = strict
	}
}

// NewClient creates a Currents client backed by r
func NewClient(r Requester, opts ...ClientOption) *Client {
	c := &Client{
		requester: r,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strict reports whether schema violations are treated as failures
func (c *Client) Strict() bool {
	return c.strict
}

// SearchNews queries /search. Empty parameters are omitted from the request.
func (c *Client) SearchNews(ctx context.Context, p SearchParams) (any, error) {
	return c.fetch(ctx, EndpointSearch, p.query(), SchemaNews)
}

// LatestNews queries /latest-news, optionally filtered by language
func (c *Client) LatestNews(ctx context.Context, language string) (any, error) {
	return c.fetch(ctx, EndpointLatestNews, map[string]string{"language": language}, SchemaNews)
}

// AvailableLanguages lists the language codes the provider supports
func (c *Client) AvailableLanguages(ctx context.Context) (any, error) {
	return c.fetch(ctx, EndpointAvailableLanguages, nil, SchemaLanguages)
}

// AvailableRegions lists the region codes the provider supports
func (c *Client) AvailableRegions(ctx context.Context) (any, error) {
	return c.fetch(ctx, EndpointAvailableRegions, nil, SchemaRegions)
}

// AvailableCategories lists the news categories the provider supports
func (c *Client) AvailableCategories(ctx context.Context) (any, error) {
	return c.fetch(ctx, EndpointAvailableCategories, nil, SchemaCategories)
}

// DefaultStartDate returns the start of the default search window
func (c *Client) DefaultStartDate() string {
	return c.now().UTC().Add(-DefaultSearchWindow).Format(DateFormat)
}

func (c *Client) fetch(ctx context.Context, endpoint string, params map[string]string, kind string) (any, error) {
	ctx, span := tracing.StartProviderSpan(ctx, endpoint, params)
	defer span.End()

	payload, err := c.requester.Get(ctx, endpoint, params)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if err := ValidateResponse(kind, payload); err != nil {
		metrics.RecordSchemaViolation(kind)
		tracing.RecordError(span, err)
		if c.strict {
			return nil, err
		}
		c.logger.Warn("Provider response does not match schema",
			"endpoint", endpoint,
			"schema", kind,
			"error", err,
		)
	}
	return payload, nil
}
