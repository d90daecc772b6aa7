package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/model"
)

func openTestSQLite(t *testing.T) *SQLiteContractRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "contracts.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryGet(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, &model.Contract{ID: "c1", UserID: "u1", Title: "123 Main St"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.Get(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "123 Main St" {
		t.Errorf("Expected title '123 Main St', got %q", got.Title)
	}
	if got.Summary != nil || got.SummaryPath != nil {
		t.Errorf("Expected null summary fields, got %v %v", got.Summary, got.SummaryPath)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Expected created_at to be parsed")
	}

	if _, err := repo.Get(ctx, "c1", "u2"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound for other owner, got %v", err)
	}
}

func TestSQLiteRepositoryUpdateSummary(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	old := time.Now().Add(-24 * time.Hour)
	if err := repo.Insert(ctx, &model.Contract{ID: "c1", UserID: "u1", CreatedAt: old}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	summary := "Cash offer, 30 day close."
	if err := repo.UpdateSummary(ctx, "c1", "u1", &summary, "summaries/c1.json"); err != nil {
		t.Fatalf("UpdateSummary failed: %v", err)
	}

	got, err := repo.Get(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Summary == nil || *got.Summary != summary {
		t.Errorf("Expected summary %q, got %v", summary, got.Summary)
	}
	if got.SummaryPath == nil || *got.SummaryPath != "summaries/c1.json" {
		t.Errorf("Expected summary path, got %v", got.SummaryPath)
	}

	if err := repo.UpdateSummary(ctx, "c1", "u2", &summary, "x"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound for wrong owner, got %v", err)
	}
	if err := repo.UpdateSummary(ctx, "missing", "u1", nil, ""); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound for missing id, got %v", err)
	}
}

func TestSQLiteRepositoryGetCorruptTimestamp(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO contracts (id, user_id, title, created_at, updated_at) VALUES ('c1', 'u1', 'Main St', 'yesterday', 'yesterday')`)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	got, err := repo.Get(ctx, "c1", "u1")
	if err == nil {
		t.Fatalf("Expected error for corrupt created_at, got %+v", got)
	}
	if errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected a parse error, got ErrContractNotFound")
	}
}

func TestOpenContractRepository(t *testing.T) {
	ctx := context.Background()

	repo, err := OpenContractRepository(ctx, &config.DatabaseConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("memory driver failed: %v", err)
	}
	if _, ok := repo.(*ContractStore); !ok {
		t.Errorf("Expected *ContractStore, got %T", repo)
	}

	repo, err = OpenContractRepository(ctx, &config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("sqlite driver failed: %v", err)
	}
	defer repo.Close()
	if _, ok := repo.(*SQLiteContractRepository); !ok {
		t.Errorf("Expected *SQLiteContractRepository, got %T", repo)
	}

	if _, err := OpenContractRepository(ctx, &config.DatabaseConfig{Driver: "mongo"}); err == nil {
		t.Error("Expected error for unknown driver")
	}
}

// TestPostgresRepository runs against a real database when
// CONTRACTFLOW_TEST_DATABASE_URL is set.
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("CONTRACTFLOW_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CONTRACTFLOW_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	// temp tables are per-connection, so pin the pool to one
	pc.MaxConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `CREATE TEMP TABLE contracts (
		id text PRIMARY KEY, user_id text NOT NULL, title text, summary text, summary_path text,
		created_at timestamptz NOT NULL DEFAULT now(), updated_at timestamptz NOT NULL DEFAULT now())`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO contracts (id, user_id, title) VALUES ('c1', 'u1', 'Main St')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	repo := NewPostgresContractRepository(pool)
	summary := "Conventional loan, 21 day close."

	if err := repo.UpdateSummary(ctx, "c1", "u2", &summary, "summaries/c1.json"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound for wrong owner, got %v", err)
	}
	if err := repo.UpdateSummary(ctx, "c1", "u1", &summary, "summaries/c1.json"); err != nil {
		t.Fatalf("UpdateSummary failed: %v", err)
	}

	got, err := repo.Get(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Main St" || got.Summary == nil || *got.Summary != summary {
		t.Errorf("Unexpected contract: %+v", got)
	}
}
