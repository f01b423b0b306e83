package repository

import (
	"context"

	"leadscout/internal/leadgen/domain"
)

// ScrapeConfigRepository supplies stored scrape configurations. The
// pipeline only reads configs; creating and scheduling them belongs to
// the callers.
type ScrapeConfigRepository interface {
	Get(ctx context.Context, id string) (*domain.Config, error)
	ListActive(ctx context.Context) ([]*domain.Config, error)
}
