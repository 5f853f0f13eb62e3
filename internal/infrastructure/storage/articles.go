package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

// ArticleStorage persists enriched news items in Postgres.
type ArticleStorage struct {
	db *sqlx.DB
}

var _ ports.ArticleRepository = (*ArticleStorage)(nil)

// NewArticleStorage wires the sqlx connection.
func NewArticleStorage(db *sqlx.DB) *ArticleStorage {
	return &ArticleStorage{db: db}
}

// Create inserts the article. A (campaign_id, url) duplicate surfaces as
// domain.ErrConflict; any other rejection as a PersistError.
func (s *ArticleStorage) Create(ctx context.Context, article domain.Article) (domain.Article, error) {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	article.CreatedAt = time.Now().UTC()

	topics := article.Topics
	if topics == nil {
		topics = []string{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (id, campaign_id, source, title, url, image_url, snippet,
                               published_at, sentiment, topics, summary, raw, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		article.ID,
		article.CampaignID,
		article.Source,
		article.Title,
		article.URL,
		article.ImageURL,
		article.Snippet,
		article.PublishedAt,
		int(article.Sentiment),
		pq.Array(topics),
		article.Summary,
		[]byte(article.Raw),
		article.CreatedAt,
	)
	if err != nil {
		return domain.Article{}, mapWriteError("insert article", err)
	}

	return article, nil
}

// ListByCampaign returns the campaign's articles, most recent first.
func (s *ArticleStorage) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]domain.Article, error) {
	capped, skip := listWindow(limit, offset)

	query, args, err := psql.
		Select("id", "campaign_id", "source", "title", "url", "image_url", "snippet",
			"published_at", "sentiment", "topics", "summary", "raw", "created_at").
		From("articles").
		Where(sq.Eq{"campaign_id": campaignID}).
		OrderBy("published_at DESC NULLS LAST", "created_at DESC").
		Limit(capped).
		Offset(skip).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	var rows []dbArticle
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}

	return lo.Map(rows, func(row dbArticle, _ int) domain.Article {
		return row.toDomain()
	}), nil
}

type dbArticle struct {
	ID          string         `db:"id"`
	CampaignID  string         `db:"campaign_id"`
	Source      string         `db:"source"`
	Title       string         `db:"title"`
	URL         string         `db:"url"`
	ImageURL    string         `db:"image_url"`
	Snippet     string         `db:"snippet"`
	PublishedAt *time.Time     `db:"published_at"`
	Sentiment   int            `db:"sentiment"`
	Topics      pq.StringArray `db:"topics"`
	Summary     string         `db:"summary"`
	Raw         []byte         `db:"raw"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (row dbArticle) toDomain() domain.Article {
	return domain.Article{
		ID:          row.ID,
		CampaignID:  row.CampaignID,
		Source:      row.Source,
		Title:       row.Title,
		URL:         row.URL,
		ImageURL:    row.ImageURL,
		Snippet:     row.Snippet,
		PublishedAt: row.PublishedAt,
		Sentiment:   domain.Sentiment(row.Sentiment),
		Topics:      row.Topics,
		Summary:     row.Summary,
		Raw:         json.RawMessage(row.Raw),
		CreatedAt:   row.CreatedAt,
	}
}
