package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/model"
)

const contractsTable = "contracts"

var contractColumns = []string{"id", "user_id", "title", "summary", "summary_path", "created_at", "updated_at"}

// PostgresContractRepository talks to the hosted contracts table through a
// pgx pool.
type PostgresContractRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

var _ ContractRepository = (*PostgresContractRepository)(nil)

// OpenPostgres creates a pgx pool and verifies connectivity.
func OpenPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*PostgresContractRepository, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.ConnConfig.RuntimeParams["application_name"] = "contractflow"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgresContractRepository(pool), nil
}

func NewPostgresContractRepository(pool *pgxpool.Pool) *PostgresContractRepository {
	return &PostgresContractRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresContractRepository) Get(ctx context.Context, id, userID string) (*model.Contract, error) {
	query, args, err := r.sb.Select(contractColumns...).
		From(contractsTable).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		c     model.Contract
		title *string
	)
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.UserID, &title, &c.Summary, &c.SummaryPath, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContractNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select contract: %w", err)
	}
	if title != nil {
		c.Title = *title
	}
	return &c, nil
}

// UpdateSummary overwrites the summary fields of the (id, userID) row. A miss
// on either key is ErrContractNotFound.
func (r *PostgresContractRepository) UpdateSummary(ctx context.Context, id, userID string, summary *string, summaryPath string) error {
	query, args, err := r.sb.Update(contractsTable).
		Set("summary", summary).
		Set("summary_path", nullable(summaryPath)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContractNotFound
	}
	return nil
}

func (r *PostgresContractRepository) Close() error {
	r.pool.Close()
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
