package repository

import (
	"context"
	"errors"

	"leadscout/internal/leadgen/domain"
)

// ErrDuplicateLead is returned by Create when the per-user unique index
// on (user_id, normalized_url) rejects the insert: another job (or an
// earlier run of the same config) already persisted this URL for this
// user.
var ErrDuplicateLead = errors.New("repository: duplicate lead")

// LeadTitle is the slim projection the persister's title-similarity
// duplicate check needs; loading full Lead rows for it would drag the
// JSONB columns through memory for nothing.
type LeadTitle struct {
	ID            string
	Title         string
	NormalizedURL string
}

type LeadRepository interface {
	// Create inserts the lead, assigning lead.ID. Returns
	// ErrDuplicateLead when the user already has a live lead for the
	// same normalized URL; the insert relies on the unique index rather
	// than a read-then-write, so two concurrent jobs cannot both
	// succeed.
	Create(ctx context.Context, lead *domain.Lead) error
	ExistsByNormalizedURL(ctx context.Context, userID, normalizedURL string) (bool, error)
	// ListTitlesByPrefix returns recent leads whose title starts with
	// prefix, for the title-similarity duplicate check.
	ListTitlesByPrefix(ctx context.Context, userID, prefix string, limit int) ([]LeadTitle, error)
	ExistsByURLPrefix(ctx context.Context, userID, urlPrefix string) (bool, error)
}
