package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/repository"
)

type LeadSourceRepo struct{ db *sql.DB }

func NewLeadSourceRepo(db *sql.DB) repository.LeadSourceRepository {
	return &LeadSourceRepo{db: db}
}

// FindOrCreate upserts on the source name: a concurrent caller racing on
// the same name gets the existing row back instead of a constraint error.
func (repo *LeadSourceRepo) FindOrCreate(ctx context.Context, name, url string, sourceType domain.LeadSourceType) (*domain.LeadSource, error) {
	const query = `
INSERT INTO lead_sources (id, name, url, source_type, created_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, url, source_type, created_at`

	var src domain.LeadSource
	var srcType string
	err := repo.db.QueryRowContext(ctx, query, uuid.New().String(), name, url, string(sourceType)).
		Scan(&src.ID, &src.Name, &src.URL, &srcType, &src.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("FindOrCreate: %w", err)
	}
	src.Type = domain.LeadSourceType(srcType)
	return &src, nil
}
