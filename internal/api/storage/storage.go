package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cuongbtq/jobsnearby/shared/postgresql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// inTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (s *Storage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS job_seekers (
		id              TEXT PRIMARY KEY,
		first_name      TEXT NOT NULL DEFAULT '',
		last_name       TEXT NOT NULL DEFAULT '',
		email           TEXT NOT NULL,
		password_hash   TEXT NOT NULL,
		location        TEXT NOT NULL DEFAULT '',
		phone_number    TEXT NOT NULL DEFAULT '',
		role            TEXT NOT NULL DEFAULT '',
		education       JSONB NOT NULL DEFAULT '[]',
		work_experience JSONB NOT NULL DEFAULT '[]',
		saved_jobs      TEXT[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS job_seekers_email_key ON job_seekers (email)`,
	`CREATE TABLE IF NOT EXISTS employers (
		id                  TEXT PRIMARY KEY,
		first_name          TEXT NOT NULL DEFAULT '',
		last_name           TEXT NOT NULL DEFAULT '',
		email               TEXT NOT NULL,
		password_hash       TEXT NOT NULL,
		location            TEXT NOT NULL DEFAULT '',
		phone_number        TEXT NOT NULL DEFAULT '',
		role                TEXT NOT NULL DEFAULT '',
		company_name        TEXT NOT NULL DEFAULT '',
		company_description TEXT NOT NULL DEFAULT '',
		company_industry    TEXT NOT NULL DEFAULT '',
		education           JSONB NOT NULL DEFAULT '[]',
		work_experience     JSONB NOT NULL DEFAULT '[]',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS employers_email_key ON employers (email)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		job_id              TEXT PRIMARY KEY,
		employer_id         TEXT NOT NULL REFERENCES employers (id) ON DELETE CASCADE,
		req_id              TEXT NOT NULL,
		job_title           TEXT NOT NULL,
		job_category        TEXT NOT NULL DEFAULT '',
		employment_type     TEXT NOT NULL DEFAULT '',
		job_address         TEXT NOT NULL DEFAULT '',
		job_city            TEXT NOT NULL DEFAULT '',
		job_state           TEXT NOT NULL DEFAULT '',
		job_zip             TEXT NOT NULL DEFAULT '',
		job_description     TEXT NOT NULL DEFAULT '',
		job_qualifications  TEXT NOT NULL DEFAULT '',
		job_skills          TEXT NOT NULL DEFAULT '',
		job_salary          TEXT NOT NULL DEFAULT '',
		company_name        TEXT NOT NULL DEFAULT '',
		company_description TEXT NOT NULL DEFAULT '',
		company_industry    TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		search_vector       TSVECTOR GENERATED ALWAYS AS (
			to_tsvector('english',
				job_title || ' ' || job_description || ' ' || job_qualifications || ' ' ||
				job_skills || ' ' || company_name || ' ' || company_description || ' ' ||
				job_category || ' ' || employment_type || ' ' || company_industry)
		) STORED,
		UNIQUE (employer_id, req_id)
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_search_vector_idx ON jobs USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS jobs_created_at_idx ON jobs (created_at DESC, job_id DESC)`,
	`CREATE TABLE IF NOT EXISTS applications (
		application_id TEXT PRIMARY KEY,
		job_id         TEXT NOT NULL REFERENCES jobs (job_id) ON DELETE CASCADE,
		job_seeker_id  TEXT NOT NULL REFERENCES job_seekers (id) ON DELETE CASCADE,
		status         TEXT NOT NULL CHECK (status IN ('applied', 'under_review', 'accepted', 'rejected')),
		applied_on     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (job_id, job_seeker_id)
	)`,
	`CREATE INDEX IF NOT EXISTS applications_job_seeker_idx ON applications (job_seeker_id, applied_on DESC)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		notification_id TEXT PRIMARY KEY,
		event_id        TEXT NOT NULL,
		recipient_id    TEXT NOT NULL,
		recipient_type  TEXT NOT NULL,
		kind            TEXT NOT NULL,
		message         TEXT NOT NULL,
		reference_id    TEXT NOT NULL DEFAULT '',
		is_read         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (event_id, recipient_id)
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications (recipient_id, created_at DESC)`,
}

// Migrate creates the schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == pgForeignKeyViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// qualify prefixes every column in a comma separated list with alias
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// rowsAffected reports whether the statement touched at least one row
func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
