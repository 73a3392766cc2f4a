package tools

// AllTools contains all tool specifications for the Currents MCP server.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// NEWS TOOLS
	// ==========================================================================
	{
		Name:     "search_news",
		Method:   "SearchNews",
		Title:    "Search News",
		Category: "search",
		Tags:     []string{"news", "search"},
		Description: `Search news articles by keywords, language, country and category.

USE WHEN: User asks "find news about X", "what happened with X recently", "news from country Y about Z".

NOT FOR: A general feed of the newest headlines (use get_latest_news instead).

PARAMETERS:
- keywords: Words to search for (optional)
- language: Language code such as en, es, fr (optional)
- country: Country code such as US, ES (optional)
- category: Category such as technology, business (optional)
- start_date: Start of the window, YYYY-MM-DDTHH:MM:SS+00:00 (default: one hour ago)
- end_date: End of the window, same format (optional)

RETURNS: The provider's article list plus the parameters that were sent.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_latest_news",
		Method:   "GetLatestNews",
		Title:    "Latest News",
		Category: "latest",
		Tags:     []string{"news", "latest"},
		Description: `Get the most recent news headlines.

USE WHEN: User asks "what's in the news", "latest headlines", "today's news in Spanish".

NOT FOR: Looking for a specific topic (use search_news instead).

PARAMETERS:
- language: Language code such as en, es, fr (optional)

RETURNS: The provider's latest article list and the requested language.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// REFERENCE TOOLS
	// ==========================================================================
	{
		Name:     "get_available_languages",
		Method:   "GetAvailableLanguages",
		Title:    "Available Languages",
		Category: "reference",
		Tags:     []string{"news", "languages"},
		Description: `List the language codes accepted by the news provider.

USE WHEN: User asks "which languages are supported", or before calling search_news with an unfamiliar language.

PARAMETERS: none

RETURNS: Mapping between language names and codes.`,
		BareErrors: true,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_available_regions",
		Method:   "GetAvailableRegions",
		Title:    "Available Regions",
		Category: "reference",
		Tags:     []string{"news", "regions"},
		Description: `List the region (country) codes accepted by the news provider.

USE WHEN: User asks "which countries can I filter by", or before calling search_news with a country.

PARAMETERS: none

RETURNS: Mapping between region names and codes.`,
		BareErrors: true,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_available_categories",
		Method:   "GetAvailableCategories",
		Title:    "Available Categories",
		Category: "reference",
		Tags:     []string{"news", "categories"},
		Description: `List the news categories accepted by the news provider.

USE WHEN: User asks "what topics are available", or before calling search_news with a category.

PARAMETERS: none

RETURNS: List of category names.`,
		BareErrors: true,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}

// ToolsByCategory returns the specs in category, in declaration order
func ToolsByCategory(category string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	return out
}

// ToolsByTag returns the specs carrying tag, in declaration order
func ToolsByTag(tag string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		for _, t := range spec.Tags {
			if t == tag {
				out = append(out, spec)
				break
			}
		}
	}
	return out
}
