package models

// Show represents a TV show candidate from an IMDB title search
type Show struct {
	ID    string `json:"id"` // IMDB identifier, e.g. "tt0903747"
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"` // First-air year, 0 when not listed
	Rank  int    `json:"rank"`           // 1-based position in the search results
}
