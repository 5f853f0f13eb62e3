package domain

import (
	"encoding/json"
	"time"
)

// Sentiment is a three-way label attached to every analyzed item.
type Sentiment int

const (
	SentimentNegative Sentiment = -1
	SentimentNeutral  Sentiment = 0
	SentimentPositive Sentiment = 1
)

// RawNewsItem is a single normalized feed entry. It lives only between the
// fetch and the persist of the enrichment loop.
type RawNewsItem struct {
	Source      string
	Title       string
	URL         string
	ImageURL    string
	Snippet     string
	PublishedAt *time.Time
}

// RawLinkMeta is the descriptive metadata scraped from a submitted page.
// Every field besides URL may be empty.
type RawLinkMeta struct {
	URL         string
	Title       string
	Description string
	ImageURL    string
	SiteName    string
}

// Analysis is the enrichment result for one raw item. It is folded into the
// persisted record and never stored on its own.
type Analysis struct {
	Sentiment Sentiment
	Topics    []string
	Summary   string
}

// Article is a persisted, enriched news item belonging to one campaign.
// Articles are never mutated after creation.
type Article struct {
	ID          string
	CampaignID  string
	Source      string
	Title       string
	URL         string
	ImageURL    string
	Snippet     string
	PublishedAt *time.Time
	Sentiment   Sentiment
	Topics      []string
	Summary     string
	Raw         json.RawMessage
	CreatedAt   time.Time
}

// SocialLink is a persisted, enriched manually-submitted link. A link may
// carry nothing but its URL when metadata extraction found no tags.
type SocialLink struct {
	ID          string
	CampaignID  string
	URL         string
	Platform    string
	Title       string
	Description string
	ImageURL    string
	Sentiment   Sentiment
	Summary     string
	Raw         json.RawMessage
	CreatedAt   time.Time
}
