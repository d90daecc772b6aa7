package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/chrispoponi/contractflowai-web-sub001/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contracts (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	title        TEXT,
	summary      TEXT,
	summary_path TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contracts_user ON contracts(user_id);
`

// SQLiteContractRepository is a file-backed repository for local development.
// Timestamps are stored as RFC 3339 text.
type SQLiteContractRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ContractRepository = (*SQLiteContractRepository)(nil)

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteContractRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteContractRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Insert adds a contract row. Contract creation normally happens in the front
// end; this exists for seeding local databases.
func (r *SQLiteContractRepository) Insert(ctx context.Context, c *model.Contract) error {
	now := time.Now().UTC()
	created := c.CreatedAt
	if created.IsZero() {
		created = now
	}

	_, err := r.sb.Insert(contractsTable).
		Columns(contractColumns...).
		Values(c.ID, c.UserID, c.Title, nullString(c.Summary), nullString(c.SummaryPath), formatTime(created), formatTime(now)).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (r *SQLiteContractRepository) Get(ctx context.Context, id, userID string) (*model.Contract, error) {
	var (
		c                  model.Contract
		title              sql.NullString
		createdAt, updated string
	)
	err := r.sb.Select(contractColumns...).
		From(contractsTable).
		Where(sq.Eq{"id": id, "user_id": userID}).
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&c.ID, &c.UserID, &title, &c.Summary, &c.SummaryPath, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select contract: %w", err)
	}

	c.Title = title.String
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of contract %s: %w", id, err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at of contract %s: %w", id, err)
	}
	return &c, nil
}

func (r *SQLiteContractRepository) UpdateSummary(ctx context.Context, id, userID string, summary *string, summaryPath string) error {
	res, err := r.sb.Update(contractsTable).
		Set("summary", nullString(summary)).
		Set("summary_path", nullString(nullable(summaryPath))).
		Set("updated_at", formatTime(time.Now().UTC())).
		Where(sq.Eq{"id": id, "user_id": userID}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrContractNotFound
	}
	return nil
}

func (r *SQLiteContractRepository) Close() error {
	return r.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
