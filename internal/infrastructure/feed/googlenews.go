package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/go-resty/resty/v2"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

const defaultBaseURL = "https://news.google.com/rss/search"

// GoogleNews fetches the Google News search feed for a query and normalizes
// its entries. A network or parse failure fails the whole call; partial
// results are never returned.
type GoogleNews struct {
	http    *resty.Client
	baseURL string
	logger  *slog.Logger
}

var _ ports.FeedFetcher = (*GoogleNews)(nil)

// NewGoogleNews builds the fetcher with a bounded request timeout.
func NewGoogleNews(timeout time.Duration, logger *slog.Logger) *GoogleNews {
	return &GoogleNews{
		http:    resty.New().SetTimeout(timeout),
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// Fetch retrieves the feed and maps up to query.MaxResults entries in feed
// order.
func (g *GoogleNews) Fetch(ctx context.Context, query domain.FeedQuery) ([]domain.RawNewsItem, error) {
	feedURL := g.buildFeedURL(query)

	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127 Safari/537.36").
		SetHeader("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8").
		SetHeader("Accept-Language", fmt.Sprintf("%s,es;q=0.9,en;q=0.6", query.Lang)).
		Get(feedURL)
	if err != nil {
		return nil, &domain.FetchError{URL: feedURL, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &domain.FetchError{URL: feedURL, Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	parsed, err := rss.Parse(resp.Body())
	if err != nil {
		return nil, &domain.FetchError{URL: feedURL, Err: fmt.Errorf("parse feed: %w", err)}
	}

	items := make([]domain.RawNewsItem, 0, query.MaxResults)
	for _, entry := range parsed.Items {
		if len(items) >= query.MaxResults {
			break
		}

		title := strings.TrimSpace(entry.Title)
		link := cleanLink(strings.TrimSpace(entry.Link))
		if title == "" || link == "" {
			continue
		}

		item := domain.RawNewsItem{
			Source:  sourceLabel(title, link),
			Title:   title,
			URL:     link,
			Snippet: strings.TrimSpace(entry.Summary),
		}
		if !entry.Date.IsZero() {
			published := entry.Date.UTC()
			item.PublishedAt = &published
		}

		items = append(items, item)
	}

	g.debug("feed fetched", "term", query.Term, "entries", len(parsed.Items), "items", len(items))
	return items, nil
}

// buildFeedURL encodes the search term, recency window and locale parameters.
// Simple terms are quoted for exact matching; terms that already carry search
// operators are passed through untouched.
func (g *GoogleNews) buildFeedURL(query domain.FeedQuery) string {
	term := strings.TrimSpace(query.Term)
	if !hasOperators(term) {
		term = `"` + term + `"`
	}
	if query.WindowDays > 0 {
		term = fmt.Sprintf("%s when:%dd", term, query.WindowDays)
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("hl", query.Lang)
	params.Set("gl", query.Country)
	params.Set("ceid", query.Country+":"+query.Lang)

	return g.baseURL + "?" + params.Encode()
}

func hasOperators(term string) bool {
	for _, op := range []string{`"`, " OR ", "site:", "(", ")"} {
		if strings.Contains(term, op) {
			return true
		}
	}
	return false
}

// cleanLink unwraps the news.google.com redirect wrapper when the target URL
// is carried in the query string.
func cleanLink(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if strings.HasSuffix(parsed.Host, "news.google.com") {
		if target := parsed.Query().Get("url"); target != "" {
			return target
		}
	}
	return raw
}

// sourceLabel derives the publisher label. Google News appends it to the
// title as " - Publisher"; the link host is the fallback.
func sourceLabel(title, link string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		if label := strings.TrimSpace(title[idx+3:]); label != "" {
			return label
		}
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

func (g *GoogleNews) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
