package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

// NewsIngestor is the slice of the enricher the batch needs.
type NewsIngestor interface {
	IngestNews(ctx context.Context, campaign domain.Campaign) (NewsReport, error)
}

// BatchReport aggregates one unattended run across all campaigns.
type BatchReport struct {
	Campaigns int `json:"campaigns"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Added     int `json:"added"`
}

// Batch fans the news-ingestion path out over every stored campaign. One
// campaign's failure is logged and never prevents the rest of the run; the
// next scheduled run is the retry mechanism.
type Batch struct {
	campaigns   ports.CampaignRepository
	ingestor    NewsIngestor
	concurrency int
	logger      *slog.Logger
}

// NewBatch builds the batch runner with a bounded campaign concurrency.
func NewBatch(campaigns ports.CampaignRepository, ingestor NewsIngestor, concurrency int, logger *slog.Logger) *Batch {
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Batch{
		campaigns:   campaigns,
		ingestor:    ingestor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run executes one batch over all campaigns. The returned error covers only
// the campaign listing; per-campaign outcomes live in the report.
func (b *Batch) Run(ctx context.Context, now time.Time) (BatchReport, error) {
	campaigns, err := b.campaigns.List(ctx)
	if err != nil {
		return BatchReport{}, fmt.Errorf("list campaigns: %w", err)
	}

	report := BatchReport{Campaigns: len(campaigns)}
	if len(campaigns) == 0 {
		return report, nil
	}

	b.info("batch run started", "campaigns", len(campaigns), "at", now.Format(time.RFC3339))

	sem := make(chan struct{}, b.concurrency)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, campaign := range campaigns {
		wg.Add(1)
		go func(campaign domain.Campaign) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			news, err := b.ingestor.IngestNews(ctx, campaign)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				b.warn("campaign ingestion failed", "campaign_id", campaign.ID, "campaign", campaign.Name, "error", err)
				return
			}
			report.Succeeded++
			report.Added += news.Added
		}(campaign)
	}

	wg.Wait()

	b.info("batch run finished",
		"campaigns", report.Campaigns,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"added", report.Added,
	)
	return report, nil
}

func (b *Batch) info(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *Batch) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
