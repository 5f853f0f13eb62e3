package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Campaign is a tracked subject: a display name plus the search query used to
// discover news coverage about it. It is the unit of ingestion scope and the
// exclusive owner of its articles and social links.
type Campaign struct {
	ID        string
	Name      string
	Query     string
	CreatedAt time.Time

	// Per-campaign fetch overrides; zero values fall back to configured defaults.
	MaxResults int
	WindowDays int
	Lang       string
	Country    string
}

// Validate checks the campaign invariants before it is persisted.
func (c Campaign) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(c.Name)) < 2 {
		return ErrInvalidCampaign("name must be at least 2 characters")
	}
	if strings.TrimSpace(c.Query) == "" {
		return ErrInvalidCampaign("query must not be empty")
	}
	return nil
}

// FeedQuery carries the resolved parameters for one feed fetch.
type FeedQuery struct {
	Term       string
	MaxResults int
	WindowDays int
	Lang       string
	Country    string
}
