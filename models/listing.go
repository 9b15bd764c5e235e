package models

import "time"

// RawListing holds the unparsed strings pulled from one search result node.
// Source is "detail" when the detail pane was read, "list" otherwise.
type RawListing struct {
	Name       string
	RatingText string
	Address    string
	Phone      string
	URL        string
	Index      int
	Source     string
	ScrapedAt  time.Time
}

// Listing is one discovered competitor business, cleaned and validated.
type Listing struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	URL         string  `json:"url"`
	PlaceID     string  `json:"place_id"`
	Index       int     `json:"index"`
	ReviewsURL  string  `json:"reviews_url"`
}
