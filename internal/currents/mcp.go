package currents

import (
	"context"
	"fmt"
)

// MCP Tool wrapper methods
// These wrap the client methods with Args/Envelope types for MCP integration.
// Provider failures are folded into the envelope; the returned error is always nil.

// SearchNewsMCP is the MCP wrapper for SearchNews. A missing start_date
// defaults to one hour before now; end_date has no default.
func (c *Client) SearchNewsMCP(ctx context.Context, args SearchNewsArgs) (Envelope, error) {
	params := SearchParams{
		Language:  args.Language,
		Keywords:  args.Keywords,
		Country:   args.Country,
		Category:  args.Category,
		StartDate: args.StartDate,
		EndDate:   args.EndDate,
	}
	if params.StartDate == "" {
		params.StartDate = c.DefaultStartDate()
	}

	result, err := c.SearchNews(ctx, params)
	if err != nil {
		return Fail(message(err)), nil
	}

	env := Succeed(result)
	env.SearchParams = &params
	return env, nil
}

// GetLatestNewsMCP is the MCP wrapper for LatestNews
func (c *Client) GetLatestNewsMCP(ctx context.Context, args GetLatestNewsArgs) (Envelope, error) {
	result, err := c.LatestNews(ctx, args.Language)
	if err != nil {
		return Fail(message(err)), nil
	}

	env := Succeed(result)
	env.Language = args.Language
	return env, nil
}

// GetAvailableLanguagesMCP is the MCP wrapper for AvailableLanguages
func (c *Client) GetAvailableLanguagesMCP(ctx context.Context, _ GetAvailableLanguagesArgs) (Envelope, error) {
	result, err := c.AvailableLanguages(ctx)
	if err != nil {
		return FailBare(fmt.Sprintf("failed to get available languages: %s", message(err))), nil
	}
	return Succeed(result), nil
}

// GetAvailableRegionsMCP is the MCP wrapper for AvailableRegions
func (c *Client) GetAvailableRegionsMCP(ctx context.Context, _ GetAvailableRegionsArgs) (Envelope, error) {
	result, err := c.AvailableRegions(ctx)
	if err != nil {
		return FailBare(fmt.Sprintf("failed to get available regions: %s", message(err))), nil
	}
	return Succeed(result), nil
}

// GetAvailableCategoriesMCP is the MCP wrapper for AvailableCategories
func (c *Client) GetAvailableCategoriesMCP(ctx context.Context, _ GetAvailableCategoriesArgs) (Envelope, error) {
	result, err := c.AvailableCategories(ctx)
	if err != nil {
		return FailBare(fmt.Sprintf("failed to get available categories: %s", message(err))), nil
	}
	return Succeed(result), nil
}

// message returns a non-empty error text so a failure envelope always has an error
func message(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}
