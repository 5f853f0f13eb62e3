package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

// SocialLinkStorage persists enriched submitted links in Postgres.
type SocialLinkStorage struct {
	db *sqlx.DB
}

var _ ports.SocialLinkRepository = (*SocialLinkStorage)(nil)

// NewSocialLinkStorage wires the sqlx connection.
func NewSocialLinkStorage(db *sqlx.DB) *SocialLinkStorage {
	return &SocialLinkStorage{db: db}
}

// Create inserts the link with the same conflict contract as articles.
func (s *SocialLinkStorage) Create(ctx context.Context, link domain.SocialLink) (domain.SocialLink, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	link.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO social_links (id, campaign_id, url, platform, title, description,
                                   image_url, sentiment, summary, raw, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		link.ID,
		link.CampaignID,
		link.URL,
		link.Platform,
		link.Title,
		link.Description,
		link.ImageURL,
		int(link.Sentiment),
		link.Summary,
		[]byte(link.Raw),
		link.CreatedAt,
	)
	if err != nil {
		return domain.SocialLink{}, mapWriteError("insert social link", err)
	}

	return link, nil
}

// ListByCampaign returns the campaign's links, most recent first.
func (s *SocialLinkStorage) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]domain.SocialLink, error) {
	capped, skip := listWindow(limit, offset)

	query, args, err := psql.
		Select("id", "campaign_id", "url", "platform", "title", "description",
			"image_url", "sentiment", "summary", "raw", "created_at").
		From("social_links").
		Where(sq.Eq{"campaign_id": campaignID}).
		OrderBy("created_at DESC").
		Limit(capped).
		Offset(skip).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build social link query: %w", err)
	}

	var rows []dbSocialLink
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select social links: %w", err)
	}

	return lo.Map(rows, func(row dbSocialLink, _ int) domain.SocialLink {
		return row.toDomain()
	}), nil
}

type dbSocialLink struct {
	ID          string    `db:"id"`
	CampaignID  string    `db:"campaign_id"`
	URL         string    `db:"url"`
	Platform    string    `db:"platform"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImageURL    string    `db:"image_url"`
	Sentiment   int       `db:"sentiment"`
	Summary     string    `db:"summary"`
	Raw         []byte    `db:"raw"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row dbSocialLink) toDomain() domain.SocialLink {
	return domain.SocialLink{
		ID:          row.ID,
		CampaignID:  row.CampaignID,
		URL:         row.URL,
		Platform:    row.Platform,
		Title:       row.Title,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		Sentiment:   domain.Sentiment(row.Sentiment),
		Summary:     row.Summary,
		Raw:         json.RawMessage(row.Raw),
		CreatedAt:   row.CreatedAt,
	}
}
