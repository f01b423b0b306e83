package repository

import (
	"context"

	"leadscout/internal/leadgen/domain"
)

type LeadSourceRepository interface {
	// FindOrCreate returns the existing source registered under name, or
	// inserts a new one with the given url and derived type.
	FindOrCreate(ctx context.Context, name, url string, sourceType domain.LeadSourceType) (*domain.LeadSource, error)
}
