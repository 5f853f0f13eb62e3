package ports

import (
	"context"
	"time"

	"github.com/vigiamx/mediawatch/internal/domain"
)

// FeedFetcher pulls and normalizes a syndicated news feed for a query.
type FeedFetcher interface {
	Fetch(ctx context.Context, query domain.FeedQuery) ([]domain.RawNewsItem, error)
}

// MetaExtractor fetches one page and extracts its descriptive metadata.
type MetaExtractor interface {
	Extract(ctx context.Context, url string) (domain.RawLinkMeta, error)
}

// Analyzer assigns sentiment, topics and a summary to a piece of text.
// Implementations always return a well-formed Analysis; degraded quality is
// acceptable, a blocked ingestion is not.
type Analyzer interface {
	Analyze(ctx context.Context, text string) domain.Analysis
}

// CampaignRepository persists campaigns and lists them for batch runs.
type CampaignRepository interface {
	Create(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	Find(ctx context.Context, id string) (domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	Delete(ctx context.Context, id string) error
}

// ArticleRepository persists enriched news items. Create returns
// domain.ErrConflict when an identical (campaign, url) record exists.
type ArticleRepository interface {
	Create(ctx context.Context, article domain.Article) (domain.Article, error)
	ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]domain.Article, error)
}

// SocialLinkRepository persists enriched submitted links, with the same
// conflict contract as ArticleRepository.
type SocialLinkRepository interface {
	Create(ctx context.Context, link domain.SocialLink) (domain.SocialLink, error)
	ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]domain.SocialLink, error)
}

// Scheduler drives the recurring batch job.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
