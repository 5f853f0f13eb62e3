package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/vigiamx/mediawatch/internal/domain"
	"github.com/vigiamx/mediawatch/internal/ports"
)

// CampaignStorage persists campaigns in Postgres.
type CampaignStorage struct {
	db *sqlx.DB
}

var _ ports.CampaignRepository = (*CampaignStorage)(nil)

// NewCampaignStorage wires the sqlx connection.
func NewCampaignStorage(db *sqlx.DB) *CampaignStorage {
	return &CampaignStorage{db: db}
}

// Create inserts the campaign, assigning id and creation time.
func (s *CampaignStorage) Create(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	campaign.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, name, query, max_results, window_days, lang, country, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		campaign.ID,
		campaign.Name,
		campaign.Query,
		campaign.MaxResults,
		campaign.WindowDays,
		campaign.Lang,
		campaign.Country,
		campaign.CreatedAt,
	)
	if err != nil {
		return domain.Campaign{}, mapWriteError("insert campaign", err)
	}

	return campaign, nil
}

// Find loads one campaign or returns domain.ErrCampaignNotFound.
func (s *CampaignStorage) Find(ctx context.Context, id string) (domain.Campaign, error) {
	var row dbCampaign
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, query, max_results, window_days, lang, country, created_at
         FROM campaigns WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Campaign{}, domain.ErrCampaignNotFound
		}
		return domain.Campaign{}, fmt.Errorf("select campaign: %w", err)
	}
	return row.toDomain(), nil
}

// List returns all campaigns, newest first.
func (s *CampaignStorage) List(ctx context.Context) ([]domain.Campaign, error) {
	var rows []dbCampaign
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, query, max_results, window_days, lang, country, created_at
         FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select campaigns: %w", err)
	}

	return lo.Map(rows, func(row dbCampaign, _ int) domain.Campaign {
		return row.toDomain()
	}), nil
}

// Delete removes the campaign; articles and links cascade via foreign keys.
func (s *CampaignStorage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

type dbCampaign struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Query      string    `db:"query"`
	MaxResults int       `db:"max_results"`
	WindowDays int       `db:"window_days"`
	Lang       string    `db:"lang"`
	Country    string    `db:"country"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row dbCampaign) toDomain() domain.Campaign {
	return domain.Campaign{
		ID:         row.ID,
		Name:       row.Name,
		Query:      row.Query,
		MaxResults: row.MaxResults,
		WindowDays: row.WindowDays,
		Lang:       row.Lang,
		Country:    row.Country,
		CreatedAt:  row.CreatedAt,
	}
}
