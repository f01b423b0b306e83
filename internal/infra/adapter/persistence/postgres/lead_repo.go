package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/repository"
	"leadscout/internal/resilience/circuitbreaker"
)

// LeadRepo is the write-hot repository, so its connection rides behind
// the database circuit breaker: a down database trips fast instead of
// stalling every in-flight job on connection timeouts.
type LeadRepo struct{ db *circuitbreaker.DBCircuitBreaker }

func NewLeadRepo(db *sql.DB) repository.LeadRepository {
	return &LeadRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

// Create inserts the lead under the (user_id, normalized_url) unique
// index. ON CONFLICT DO NOTHING plus RETURNING makes the duplicate check
// and the insert one atomic statement, so two concurrent jobs for the
// same user cannot both persist the same URL.
func (repo *LeadRepo) Create(ctx context.Context, lead *domain.Lead) error {
	const query = `
INSERT INTO leads (
    id, user_id, source_id, url, normalized_url, title, company, location,
    project_type, budget, timeline, industry_type, description,
    room_count, square_footage, employees, keywords, status, priority,
    score, confidence, extraction_method, qualification, contact_info,
    custom_fields, published_at, scraped_at, notes, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
    $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
    now(), now()
)
ON CONFLICT (user_id, normalized_url) DO NOTHING
RETURNING id`

	contactInfo, err := marshalContactInfo(lead.ContactInfo)
	if err != nil {
		return fmt.Errorf("Create: contact_info: %w", err)
	}
	customFields, err := marshalCustomFields(lead.Custom)
	if err != nil {
		return fmt.Errorf("Create: custom_fields: %w", err)
	}

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}

	var sourceID sql.NullString
	if lead.SourceID != "" {
		sourceID = sql.NullString{String: lead.SourceID, Valid: true}
	}

	var id string
	err = repo.db.QueryRowContext(ctx, query,
		lead.ID, lead.UserID, sourceID, lead.URL, lead.NormalizedURL,
		lead.Title, lead.Company, lead.Location, lead.ProjectType,
		lead.Budget, lead.Timeline, lead.IndustryType, lead.Description,
		lead.RoomCount, lead.SquareFootage, lead.Employees,
		pq.Array(lead.Keywords), string(lead.Status), string(lead.Priority),
		lead.Score, lead.Confidence, string(lead.ExtractionMethod),
		string(lead.Qualification), contactInfo, customFields,
		lead.PublishedAt, lead.ScrapedAt, lead.Notes,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return repository.ErrDuplicateLead
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	lead.ID = id
	return nil
}

func (repo *LeadRepo) ExistsByNormalizedURL(ctx context.Context, userID, normalizedURL string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM leads WHERE user_id = $1 AND normalized_url = $2
)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, userID, normalizedURL).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByNormalizedURL: %w", err)
	}
	return exists, nil
}

func (repo *LeadRepo) ListTitlesByPrefix(ctx context.Context, userID, prefix string, limit int) ([]repository.LeadTitle, error) {
	const query = `
SELECT id, title, normalized_url
FROM leads
WHERE user_id = $1 AND title LIKE $2 || '%'
ORDER BY created_at DESC
LIMIT $3`
	rows, err := repo.db.QueryContext(ctx, query, userID, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("ListTitlesByPrefix: %w", err)
	}
	defer func() { _ = rows.Close() }()

	titles := make([]repository.LeadTitle, 0, limit)
	for rows.Next() {
		var t repository.LeadTitle
		if err := rows.Scan(&t.ID, &t.Title, &t.NormalizedURL); err != nil {
			return nil, fmt.Errorf("ListTitlesByPrefix: Scan: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

func (repo *LeadRepo) ExistsByURLPrefix(ctx context.Context, userID, urlPrefix string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM leads WHERE user_id = $1 AND normalized_url LIKE $2 || '%'
)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, userID, urlPrefix).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURLPrefix: %w", err)
	}
	return exists, nil
}

func marshalContactInfo(info *domain.ContactInfo) ([]byte, error) {
	if info == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(info)
}

func marshalCustomFields(custom map[string]domain.Value) ([]byte, error) {
	if len(custom) == 0 {
		return []byte("{}"), nil
	}
	native := make(map[string]interface{}, len(custom))
	for key, val := range custom {
		native[key] = val.Native()
	}
	return json.Marshal(native)
}
