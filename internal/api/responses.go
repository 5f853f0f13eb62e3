package api

import (
	"encoding/json"
	"time"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/usecase"
)

type campaignJSON struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Query      string    `json:"query"`
	MaxResults int       `json:"max_results,omitempty"`
	WindowDays int       `json:"window_days,omitempty"`
	Lang       string    `json:"lang,omitempty"`
	Country    string    `json:"country,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCampaignJSON(c domain.Campaign) campaignJSON {
	return campaignJSON{
		ID:         c.ID,
		Name:       c.Name,
		Query:      c.Query,
		MaxResults: c.MaxResults,
		WindowDays: c.WindowDays,
		Lang:       c.Lang,
		Country:    c.Country,
		CreatedAt:  c.CreatedAt,
	}
}

type articleJSON struct {
	ID          string          `json:"id"`
	Source      string          `json:"source,omitempty"`
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	ImageURL    string          `json:"image_url,omitempty"`
	Snippet     string          `json:"snippet,omitempty"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
	Sentiment   int             `json:"sentiment"`
	Topics      []string        `json:"topics"`
	Summary     string          `json:"summary"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toArticleJSON(a domain.Article) articleJSON {
	topics := a.Topics
	if topics == nil {
		topics = []string{}
	}
	return articleJSON{
		ID:          a.ID,
		Source:      a.Source,
		Title:       a.Title,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		Snippet:     a.Snippet,
		PublishedAt: a.PublishedAt,
		Sentiment:   int(a.Sentiment),
		Topics:      topics,
		Summary:     a.Summary,
		Raw:         a.Raw,
		CreatedAt:   a.CreatedAt,
	}
}

type socialLinkJSON struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Platform    string    `json:"platform,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Sentiment   int       `json:"sentiment"`
	Summary     string    `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSocialLinkJSON(l domain.SocialLink) socialLinkJSON {
	return socialLinkJSON{
		ID:          l.ID,
		URL:         l.URL,
		Platform:    l.Platform,
		Title:       l.Title,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		Sentiment:   int(l.Sentiment),
		Summary:     l.Summary,
		CreatedAt:   l.CreatedAt,
	}
}

// linkResultJSON reports the per-URL outcome of a link batch. Item-level
// failures travel inside the body, never as an HTTP-level error, so partial
// success stays visible.
type linkResultJSON struct {
	URL    string          `json:"url"`
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Link   *socialLinkJSON `json:"link,omitempty"`
}

func toLinkResultJSON(r usecase.LinkResult) linkResultJSON {
	out := linkResultJSON{URL: r.URL}
	if r.Err != "" {
		out.Status = "failed"
		out.Error = r.Err
		return out
	}
	out.Status = "ok"
	if r.Link != nil {
		link := toSocialLinkJSON(*r.Link)
		out.Link = &link
	}
	return out
}
