package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/lead_sources.sql
var seedLeadSourcesSQL string

// MigrateUp creates the lead discovery engine's schema: users (owners of
// everything), stored scrape configurations, the places leads were found
// (lead_sources), the leads themselves, their contacts, the tagging
// system, and the per-user custom column system backing each lead's
// custom_fields.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scrape_configs (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    keywords    TEXT[] NOT NULL,
    sources     TEXT[] NOT NULL DEFAULT '{}',
    max_results INT NOT NULL DEFAULT 50,
    industry    TEXT NOT NULL DEFAULT '',
    location    TEXT NOT NULL DEFAULT '',
    frequency   TEXT NOT NULL DEFAULT '',
    use_ai      BOOLEAN NOT NULL DEFAULT FALSE,
    smart_mode  BOOLEAN NOT NULL DEFAULT FALSE,
    since_days  INT NOT NULL DEFAULT 0,
    active      BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS lead_sources (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    url         TEXT NOT NULL,
    source_type VARCHAR(20) NOT NULL DEFAULT 'website',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS leads (
    id                TEXT PRIMARY KEY,
    user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    source_id         TEXT REFERENCES lead_sources(id),
    url               TEXT NOT NULL,
    normalized_url    TEXT NOT NULL,
    title             TEXT NOT NULL,
    company           TEXT NOT NULL DEFAULT 'Unknown',
    location          TEXT,
    project_type      TEXT,
    budget            TEXT,
    timeline          TEXT,
    industry_type     TEXT,
    description       TEXT,
    room_count        TEXT,
    square_footage    TEXT,
    employees         TEXT,
    keywords          TEXT[] NOT NULL DEFAULT '{}',
    status            VARCHAR(20) NOT NULL DEFAULT 'new',
    priority          VARCHAR(20) NOT NULL DEFAULT 'medium',
    score             INT NOT NULL DEFAULT 0,
    confidence        INT NOT NULL DEFAULT 0,
    extraction_method VARCHAR(20) NOT NULL DEFAULT 'manual',
    qualification     VARCHAR(20) NOT NULL DEFAULT 'unqualified',
    contact_info      JSONB,
    custom_fields     JSONB,
    notes             TEXT,
    published_at      TIMESTAMPTZ,
    scraped_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(user_id, normalized_url)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS contacts (
    id           TEXT PRIMARY KEY,
    lead_id      TEXT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
    user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name         TEXT,
    title        TEXT,
    email        TEXT,
    phone        TEXT,
    company      TEXT,
    contact_type VARCHAR(20) NOT NULL DEFAULT 'primary',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS tags (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    category    VARCHAR(20) NOT NULL DEFAULT 'custom',
    usage_count INT NOT NULL DEFAULT 0,
    is_system   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS lead_tags (
    lead_id TEXT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
    tag_id  TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (lead_id, tag_id)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS columns (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    field_key   TEXT NOT NULL,
    label       TEXT NOT NULL,
    description TEXT,
    data_type   VARCHAR(20) NOT NULL DEFAULT 'text',
    is_visible  BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(user_id, field_key)
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_leads_user_id ON leads(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_user_status ON leads(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_source_id ON leads(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_lead_id ON contacts(lead_id)`,
		`CREATE INDEX IF NOT EXISTS idx_columns_user_id ON columns(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scrape_configs_active ON scrape_configs(active) WHERE active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pg_trgm speeds up the title-prefix duplicate scan; ignore errors
	// when the extension is unavailable (no superuser rights).
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_leads_title_gin ON leads USING gin(title gin_trgm_ops)`)

	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_lead_status'
    ) THEN
        ALTER TABLE leads ADD CONSTRAINT chk_lead_status
        CHECK (status IN ('new', 'contacted', 'qualified', 'proposal', 'won', 'lost', 'archived'));
    END IF;
END $$;
`)
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_lead_priority'
    ) THEN
        ALTER TABLE leads ADD CONSTRAINT chk_lead_priority
        CHECK (priority IN ('low', 'medium', 'high', 'urgent'));
    END IF;
END $$;
`)
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_lead_qualification'
    ) THEN
        ALTER TABLE leads ADD CONSTRAINT chk_lead_qualification
        CHECK (qualification IN ('unqualified', 'qualified', 'highly_qualified'));
    END IF;
END $$;
`)

	// Seed the well-known lead sources (duplicates skip automatically).
	if _, err := db.Exec(seedLeadSourcesSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the schema in reverse dependency order.
// Use with caution: this deletes all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS lead_tags CASCADE`,
		`DROP TABLE IF EXISTS tags CASCADE`,
		`DROP TABLE IF EXISTS contacts CASCADE`,
		`DROP TABLE IF EXISTS columns CASCADE`,
		`DROP TABLE IF EXISTS leads CASCADE`,
		`DROP TABLE IF EXISTS lead_sources CASCADE`,
		`DROP TABLE IF EXISTS scrape_configs CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
