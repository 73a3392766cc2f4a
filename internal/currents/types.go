package currents

// Article is a single news item as returned by /search and /latest-news
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Author      string   `json:"author"`
	Image       *string  `json:"image,omitempty"`
	Language    string   `json:"language"`
	Category    []string `json:"category"`
	Published   string   `json:"published"` // e.g. "2024-01-01 10:00:00 +0000"
}

// NewsResult is the payload of /search and /latest-news
type NewsResult struct {
	Status string    `json:"status"`
	News   []Article `json:"news"`
}

// LanguagesResult is the payload of /available/languages
type LanguagesResult struct {
	Languages   map[string]string `json:"languages"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
}

// RegionsResult is the payload of /available/regions
type RegionsResult struct {
	Regions     map[string]string `json:"regions"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
}

// CategoriesResult is the payload of /available/category
type CategoriesResult struct {
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
}

// SearchParams are the logical parameters of a news search.
// Empty fields are not sent to the provider.
type SearchParams struct {
	Language  string `json:"language,omitempty"`
	Keywords  string `json:"keywords,omitempty"`
	Country   string `json:"country,omitempty"`
	Category  string `json:"category,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

func (p SearchParams) query() map[string]string {
	return map[string]string{
		"language":   p.Language,
		"keywords":   p.Keywords,
		"country":    p.Country,
		"category":   p.Category,
		"start_date": p.StartDate,
		"end_date":   p.EndDate,
	}
}
