package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/repository"
)

type TagRepo struct{ db *sql.DB }

func NewTagRepo(db *sql.DB) repository.TagRepository {
	return &TagRepo{db: db}
}

func (repo *TagRepo) FindOrCreateByName(ctx context.Context, name string, category domain.TagCategory) (*domain.Tag, error) {
	const query = `
INSERT INTO tags (id, name, category, usage_count, is_system, created_at)
VALUES ($1, $2, $3, 0, FALSE, now())
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, category, usage_count, is_system, created_at`

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("FindOrCreateByName: empty tag name")
	}

	var tag domain.Tag
	var cat string
	err := repo.db.QueryRowContext(ctx, query, uuid.New().String(), name, string(category)).
		Scan(&tag.ID, &tag.Name, &cat, &tag.UsageCount, &tag.IsSystem, &tag.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("FindOrCreateByName: %w", err)
	}
	tag.Category = domain.TagCategory(cat)
	return &tag, nil
}

func (repo *TagRepo) AttachToLead(ctx context.Context, tagID, leadID string) error {
	const link = `
INSERT INTO lead_tags (lead_id, tag_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	result, err := repo.db.ExecContext(ctx, link, leadID, tagID)
	if err != nil {
		return fmt.Errorf("AttachToLead: %w", err)
	}
	attached, err := result.RowsAffected()
	if err != nil || attached == 0 {
		return err
	}

	const bump = `UPDATE tags SET usage_count = usage_count + 1 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, bump, tagID); err != nil {
		return fmt.Errorf("AttachToLead: bump usage: %w", err)
	}
	return nil
}
