package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/repository"
)

type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) repository.ContactRepository {
	return &ContactRepo{db: db}
}

// BulkCreateFromExtraction inserts every extracted contact in a single
// transaction: either the lead gets its full contact list or none of it.
func (repo *ContactRepo) BulkCreateFromExtraction(ctx context.Context, contacts []domain.ContactInfo, leadID, userID string) error {
	if len(contacts) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("BulkCreateFromExtraction: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO contacts (id, lead_id, user_id, name, title, email, phone, company, contact_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`

	for i, c := range contacts {
		contactType := domain.ContactSecondary
		if i == 0 {
			contactType = domain.ContactPrimary
		}
		if _, err := tx.ExecContext(ctx, query,
			uuid.New().String(), leadID, userID,
			c.Name, c.Title, c.Email, c.Phone, c.Company, string(contactType),
		); err != nil {
			return fmt.Errorf("BulkCreateFromExtraction: insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("BulkCreateFromExtraction: commit: %w", err)
	}
	return nil
}
