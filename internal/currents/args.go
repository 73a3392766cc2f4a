package currents

// SearchNewsArgs contains parameters for search_news
type SearchNewsArgs struct {
	Language  string `json:"language,omitempty" jsonschema:"Language code (e.g. en, es, fr)"`
	Keywords  string `json:"keywords,omitempty" jsonschema:"Keywords to search for"`
	Country   string `json:"country,omitempty" jsonschema:"Country to filter by (e.g. US, ES)"`
	Category  string `json:"category,omitempty" jsonschema:"Category to filter by (e.g. technology, business)"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Start of the search window, YYYY-MM-DDTHH:MM:SS+00:00 (default: one hour ago)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"End of the search window, YYYY-MM-DDTHH:MM:SS+00:00"`
}

// GetLatestNewsArgs contains parameters for get_latest_news
type GetLatestNewsArgs struct {
	Language string `json:"language,omitempty" jsonschema:"Language code (e.g. en, es, fr)"`
}

// GetAvailableLanguagesArgs has no parameters
type GetAvailableLanguagesArgs struct{}

// GetAvailableRegionsArgs has no parameters
type GetAvailableRegionsArgs struct{}

// GetAvailableCategoriesArgs has no parameters
type GetAvailableCategoriesArgs struct{}
