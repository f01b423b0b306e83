package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/repository"
)

type ScrapeConfigRepo struct{ db *sql.DB }

func NewScrapeConfigRepo(db *sql.DB) repository.ScrapeConfigRepository {
	return &ScrapeConfigRepo{db: db}
}

const scrapeConfigColumns = `
id, user_id, keywords, sources, max_results, industry, location,
frequency, use_ai, smart_mode, since_days`

func (repo *ScrapeConfigRepo) Get(ctx context.Context, id string) (*domain.Config, error) {
	query := `SELECT ` + scrapeConfigColumns + ` FROM scrape_configs WHERE id = $1 LIMIT 1`
	cfg, err := scanConfig(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return cfg, nil
}

func (repo *ScrapeConfigRepo) ListActive(ctx context.Context) ([]*domain.Config, error) {
	query := `SELECT ` + scrapeConfigColumns + ` FROM scrape_configs WHERE active = TRUE ORDER BY created_at ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	configs := make([]*domain.Config, 0, 16)
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConfig(row rowScanner) (*domain.Config, error) {
	var cfg domain.Config
	err := row.Scan(&cfg.ID, &cfg.UserID, pq.Array(&cfg.Keywords), pq.Array(&cfg.Sources),
		&cfg.MaxResults, &cfg.Industry, &cfg.Location, &cfg.Frequency,
		&cfg.UseAI, &cfg.SmartMode, &cfg.SinceDays)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
