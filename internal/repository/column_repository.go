package repository

import (
	"context"

	"leadscout/internal/leadgen/domain"
)

type ColumnRepository interface {
	// FindVisibleByUser returns the user's visible custom columns in
	// creation order.
	FindVisibleByUser(ctx context.Context, userID string) ([]domain.Column, error)
	// CreateDefaults seeds the minimum column set (contact name, email,
	// phone) for a user who has none yet, and returns it.
	CreateDefaults(ctx context.Context, userID string) ([]domain.Column, error)
}
