package service

import (
	"context"
	"fmt"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
)

// OpenContractRepository picks the repository implementation named by
// cfg.Driver.
func OpenContractRepository(ctx context.Context, cfg *config.DatabaseConfig) (ContractRepository, error) {
	switch cfg.Driver {
	case "postgres":
		return OpenPostgres(ctx, cfg)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "contractflow.db"
		}
		return OpenSQLite(ctx, dsn)
	case "memory", "":
		return NewContractStore(cfg.MaxContracts), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
