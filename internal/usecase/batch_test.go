package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vigiamx/mediawatch/internal/domain"
)

type fakeCampaigns struct {
	campaigns []domain.Campaign
	listErr   error
}

func (f *fakeCampaigns) Create(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	return campaign, nil
}

func (f *fakeCampaigns) Find(ctx context.Context, id string) (domain.Campaign, error) {
	for _, c := range f.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Campaign{}, domain.ErrCampaignNotFound
}

func (f *fakeCampaigns) List(ctx context.Context) ([]domain.Campaign, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.campaigns, nil
}

func (f *fakeCampaigns) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeIngestor struct {
	mu     sync.Mutex
	seen   []string
	failID string
	added  int
}

func (f *fakeIngestor) IngestNews(ctx context.Context, campaign domain.Campaign) (NewsReport, error) {
	f.mu.Lock()
	f.seen = append(f.seen, campaign.ID)
	f.mu.Unlock()

	if campaign.ID == f.failID {
		return NewsReport{}, errors.New("feed unavailable")
	}
	return NewsReport{Attempted: f.added, Added: f.added}, nil
}

func TestBatchRun(t *testing.T) {
	t.Parallel()

	repo := &fakeCampaigns{campaigns: []domain.Campaign{
		{ID: "c1", Name: "Uno", Query: "uno"},
		{ID: "c2", Name: "Dos", Query: "dos"},
		{ID: "c3", Name: "Tres", Query: "tres"},
		{ID: "c4", Name: "Cuatro", Query: "cuatro"},
		{ID: "c5", Name: "Cinco", Query: "cinco"},
	}}
	ingestor := &fakeIngestor{failID: "c3", added: 2}

	report, err := NewBatch(repo, ingestor, 2, nil).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if report.Campaigns != 5 {
		t.Fatalf("campaigns = %d, want 5", report.Campaigns)
	}
	if report.Succeeded != 4 || report.Failed != 1 {
		t.Fatalf("report = %+v, want succeeded 4 failed 1", report)
	}
	if report.Added != 8 {
		t.Fatalf("added = %d, want 8", report.Added)
	}
	if len(ingestor.seen) != 5 {
		t.Fatalf("attempted campaigns = %d, want all 5", len(ingestor.seen))
	}
}

func TestBatchRunEmpty(t *testing.T) {
	t.Parallel()

	report, err := NewBatch(&fakeCampaigns{}, &fakeIngestor{}, 3, nil).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report != (BatchReport{}) {
		t.Fatalf("report = %+v, want zero", report)
	}
}

func TestBatchRunListFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeCampaigns{listErr: errors.New("db down")}
	if _, err := NewBatch(repo, &fakeIngestor{}, 3, nil).Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when listing fails")
	}
}
