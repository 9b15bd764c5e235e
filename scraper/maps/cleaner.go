package maps

import (
	"fmt"
	"strings"

	"competitor-sentiment/models"
	"competitor-sentiment/utils"
)

// Cleaner turns RawListings into validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses rating and review counts, drops listings without a real
// name or URL, and de-duplicates by URL. Output order follows input order.
func (c *Cleaner) Clean(raw []*models.RawListing) []models.Listing {
	seen := utils.NewURLSet()
	result := make([]models.Listing, 0, len(raw))

	for _, r := range raw {
		name := SanitizeName(utils.NormaliseText(r.Name))
		if name == "" || name == fmt.Sprintf("Business %d", r.Index+1) {
			c.logger.Warn("[cleaner] Skipping result %d: no valid name", r.Index+1)
			continue
		}

		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", name)
			continue
		}
		if !seen.Add(url) {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}

		result = append(result, models.Listing{
			Name:        name,
			Rating:      ParseRating(r.RatingText),
			ReviewCount: ParseReviewCount(r.RatingText),
			Address:     utils.NormaliseText(r.Address),
			Phone:       utils.NormaliseText(r.Phone),
			URL:         url,
			PlaceID:     PlaceID(url),
			Index:       r.Index + 1,
			ReviewsURL:  ReviewsURL(url),
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}
