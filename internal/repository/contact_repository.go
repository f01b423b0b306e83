package repository

import (
	"context"

	"leadscout/internal/leadgen/domain"
)

type ContactRepository interface {
	// BulkCreateFromExtraction persists the extracted contacts against
	// leadID in one round trip. The first contact is stored as the
	// primary, the rest as secondary.
	BulkCreateFromExtraction(ctx context.Context, contacts []domain.ContactInfo, leadID, userID string) error
}
