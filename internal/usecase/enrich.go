package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

const maxLinkBatch = 50

// Link result tags reported for failed items.
const (
	LinkErrFetch     = "fetch_failed"
	LinkErrDuplicate = "duplicate"
	LinkErrPersist   = "persist_failed"
)

// FeedDefaults are applied when a campaign does not override its fetch
// parameters.
type FeedDefaults struct {
	MaxResults int
	WindowDays int
	Lang       string
	Country    string
}

// NewsReport aggregates one campaign's news ingestion run.
type NewsReport struct {
	Attempted int `json:"attempted"`
	Added     int `json:"added"`
}

// LinkResult is the per-URL outcome of a link batch. Exactly one of Link or
// Err is set.
type LinkResult struct {
	URL  string
	Link *domain.SocialLink
	Err  string
}

// EnricherDeps wires the driven adapters into the enrichment orchestrator.
type EnricherDeps struct {
	Feed        ports.FeedFetcher
	Meta        ports.MetaExtractor
	Analyzer    ports.Analyzer
	Articles    ports.ArticleRepository
	Links       ports.SocialLinkRepository
	Defaults    FeedDefaults
	LinkWorkers int
	Logger      *slog.Logger
}

// Enricher composes fetch, analyze and persist per item. Failures are
// isolated per item: one bad article or URL never affects the rest of a
// batch, and partial success is the expected steady state.
type Enricher struct {
	feed        ports.FeedFetcher
	meta        ports.MetaExtractor
	analyzer    ports.Analyzer
	articles    ports.ArticleRepository
	links       ports.SocialLinkRepository
	defaults    FeedDefaults
	linkWorkers int
	logger      *slog.Logger
}

// NewEnricher constructs the orchestration component.
func NewEnricher(deps EnricherDeps) *Enricher {
	workers := deps.LinkWorkers
	if workers <= 0 {
		workers = 4
	}
	return &Enricher{
		feed:        deps.Feed,
		meta:        deps.Meta,
		analyzer:    deps.Analyzer,
		articles:    deps.Articles,
		links:       deps.Links,
		defaults:    deps.Defaults,
		linkWorkers: workers,
		logger:      deps.Logger,
	}
}

// IngestNews fetches the campaign's feed, analyzes each entry and persists
// the resulting articles. A feed failure fails the whole call with zero
// items; a persist failure on one item only costs that item.
func (e *Enricher) IngestNews(ctx context.Context, campaign domain.Campaign) (NewsReport, error) {
	items, err := e.feed.Fetch(ctx, e.feedQuery(campaign))
	if err != nil {
		return NewsReport{}, fmt.Errorf("fetch feed for campaign %s: %w", campaign.ID, err)
	}

	report := NewsReport{Attempted: len(items)}
	for _, item := range items {
		analysis := e.analyzer.Analyze(ctx, newsAnalysisInput(item))

		if _, err := e.articles.Create(ctx, buildArticle(campaign.ID, item, analysis)); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				e.debug("duplicate article skipped", "campaign_id", campaign.ID, "url", item.URL)
				continue
			}
			e.warn("persist article failed", "campaign_id", campaign.ID, "url", item.URL, "error", err)
			continue
		}
		report.Added++
	}

	e.info("news ingested", "campaign_id", campaign.ID, "attempted", report.Attempted, "added", report.Added)
	return report, nil
}

// IngestLinks extracts, analyzes and persists each submitted URL. The result
// slice has exactly one entry per attempted URL, in submission order; failed
// items carry an error tag instead of a record.
func (e *Enricher) IngestLinks(ctx context.Context, campaign domain.Campaign, urls []string) []LinkResult {
	if len(urls) > maxLinkBatch {
		urls = urls[:maxLinkBatch]
	}

	results := make([]LinkResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	workerCount := e.linkWorkers
	if workerCount > len(urls) {
		workerCount = len(urls)
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup
	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				results[idx] = e.ingestLink(ctx, campaign, urls[idx])
			}
		}()
	}

	for idx := range urls {
		jobCh <- idx
	}
	close(jobCh)
	wg.Wait()

	return results
}

func (e *Enricher) ingestLink(ctx context.Context, campaign domain.Campaign, linkURL string) LinkResult {
	meta, err := e.meta.Extract(ctx, linkURL)
	if err != nil {
		e.warn("link extraction failed", "campaign_id", campaign.ID, "url", linkURL, "error", err)
		return LinkResult{URL: linkURL, Err: LinkErrFetch}
	}

	analysis := e.analyzer.Analyze(ctx, linkAnalysisInput(meta))

	created, err := e.links.Create(ctx, buildSocialLink(campaign.ID, meta, analysis))
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			e.debug("duplicate link skipped", "campaign_id", campaign.ID, "url", linkURL)
			return LinkResult{URL: linkURL, Err: LinkErrDuplicate}
		}
		e.warn("persist link failed", "campaign_id", campaign.ID, "url", linkURL, "error", err)
		return LinkResult{URL: linkURL, Err: LinkErrPersist}
	}

	return LinkResult{URL: linkURL, Link: &created}
}

func (e *Enricher) feedQuery(campaign domain.Campaign) domain.FeedQuery {
	query := domain.FeedQuery{
		Term:       campaign.Query,
		MaxResults: campaign.MaxResults,
		WindowDays: campaign.WindowDays,
		Lang:       campaign.Lang,
		Country:    campaign.Country,
	}
	if query.MaxResults <= 0 {
		query.MaxResults = e.defaults.MaxResults
	}
	if query.WindowDays <= 0 {
		query.WindowDays = e.defaults.WindowDays
	}
	if query.Lang == "" {
		query.Lang = e.defaults.Lang
	}
	if query.Country == "" {
		query.Country = e.defaults.Country
	}
	return query
}

func newsAnalysisInput(item domain.RawNewsItem) string {
	return strings.TrimSpace(item.Title + ". " + item.Snippet)
}

func linkAnalysisInput(meta domain.RawLinkMeta) string {
	input := strings.TrimSpace(meta.Title + ". " + meta.Description)
	if input == "." || input == "" {
		return meta.URL
	}
	return input
}

func buildArticle(campaignID string, item domain.RawNewsItem, analysis domain.Analysis) domain.Article {
	raw, _ := json.Marshal(item)
	return domain.Article{
		CampaignID:  campaignID,
		Source:      item.Source,
		Title:       item.Title,
		URL:         item.URL,
		ImageURL:    item.ImageURL,
		Snippet:     item.Snippet,
		PublishedAt: item.PublishedAt,
		Sentiment:   analysis.Sentiment,
		Topics:      analysis.Topics,
		Summary:     analysis.Summary,
		Raw:         raw,
	}
}

func buildSocialLink(campaignID string, meta domain.RawLinkMeta, analysis domain.Analysis) domain.SocialLink {
	raw, _ := json.Marshal(meta)
	return domain.SocialLink{
		CampaignID:  campaignID,
		URL:         meta.URL,
		Platform:    platformFor(meta),
		Title:       meta.Title,
		Description: meta.Description,
		ImageURL:    meta.ImageURL,
		Sentiment:   analysis.Sentiment,
		Summary:     analysis.Summary,
		Raw:         raw,
	}
}

// platformFor labels well-known social hosts; anything else falls back to the
// page's own site name.
func platformFor(meta domain.RawLinkMeta) string {
	parsed, err := url.Parse(meta.URL)
	if err != nil {
		return meta.SiteName
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	switch {
	case host == "x.com" || host == "twitter.com":
		return "x"
	case strings.HasSuffix(host, "facebook.com"):
		return "facebook"
	case strings.HasSuffix(host, "instagram.com"):
		return "instagram"
	case strings.HasSuffix(host, "tiktok.com"):
		return "tiktok"
	case strings.HasSuffix(host, "youtube.com") || host == "youtu.be":
		return "youtube"
	case strings.HasSuffix(host, "threads.net"):
		return "threads"
	}
	return meta.SiteName
}

func (e *Enricher) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Enricher) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
