package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/repository"
)

type ColumnRepo struct{ db *sql.DB }

func NewColumnRepo(db *sql.DB) repository.ColumnRepository {
	return &ColumnRepo{db: db}
}

func (repo *ColumnRepo) FindVisibleByUser(ctx context.Context, userID string) ([]domain.Column, error) {
	const query = `
SELECT id, user_id, field_key, label, description, data_type, is_visible, created_at
FROM columns
WHERE user_id = $1 AND is_visible = TRUE
ORDER BY created_at ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("FindVisibleByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]domain.Column, 0, 8)
	for rows.Next() {
		var col domain.Column
		var dataType string
		if err := rows.Scan(&col.ID, &col.UserID, &col.FieldKey, &col.Label,
			&col.Description, &dataType, &col.IsVisible, &col.CreatedAt); err != nil {
			return nil, fmt.Errorf("FindVisibleByUser: Scan: %w", err)
		}
		col.DataType = domain.ColumnDataType(dataType)
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// defaultColumns is the minimum column set seeded for a user with none:
// the three contact fields every lead surface renders.
var defaultColumns = []domain.Column{
	{FieldKey: "contact_name", Label: "Contact Name", Description: "Full name of the primary contact person", DataType: domain.ColumnTypeText},
	{FieldKey: "contact_email", Label: "Contact Email", Description: "Email address of the primary contact", DataType: domain.ColumnTypeEmail},
	{FieldKey: "contact_phone", Label: "Contact Phone", Description: "Phone number of the primary contact", DataType: domain.ColumnTypePhone},
}

func (repo *ColumnRepo) CreateDefaults(ctx context.Context, userID string) ([]domain.Column, error) {
	const query = `
INSERT INTO columns (id, user_id, field_key, label, description, data_type, is_visible, created_at)
VALUES ($1, $2, $3, $4, $5, $6, TRUE, now())
ON CONFLICT (user_id, field_key) DO NOTHING`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateDefaults: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, col := range defaultColumns {
		if _, err := tx.ExecContext(ctx, query,
			uuid.New().String(), userID, col.FieldKey, col.Label,
			col.Description, string(col.DataType),
		); err != nil {
			return nil, fmt.Errorf("CreateDefaults: insert %s: %w", col.FieldKey, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateDefaults: commit: %w", err)
	}

	return repo.FindVisibleByUser(ctx, userID)
}
