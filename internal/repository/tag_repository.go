package repository

import (
	"context"

	"leadscout/internal/leadgen/domain"
)

type TagRepository interface {
	// FindOrCreateByName looks a tag up by its lowercased name,
	// inserting it with the given category when absent.
	FindOrCreateByName(ctx context.Context, name string, category domain.TagCategory) (*domain.Tag, error)
	// AttachToLead links the tag to the lead and bumps the tag's usage
	// count. Attaching an already-attached tag is a no-op.
	AttachToLead(ctx context.Context, tagID, leadID string) error
}
