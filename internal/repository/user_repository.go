package repository

import "context"

// UserRepository is the thin slice of the user store the pipeline needs:
// it only ever asks whether the configured owner exists. An unknown user
// aborts the job before dispatch; the pipeline never falls back to a
// different user.
type UserRepository interface {
	Exists(ctx context.Context, userID string) (bool, error)
}
