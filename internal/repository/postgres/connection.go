package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Organizations    string
	Folders          string
	Files            string
	Permissions      string
	FolderAccessLogs string
	FileDownloadLogs string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Organizations:    prefix + "organizations",
		Folders:          prefix + "folders",
		Files:            prefix + "files",
		Permissions:      prefix + "permissions",
		FolderAccessLogs: prefix + "folder_access_logs",
		FileDownloadLogs: prefix + "file_download_logs",
	}
}

// All returns every table, children before parents (drop order)
func (t *TableNames) All() []string {
	return []string{
		t.FileDownloadLogs,
		t.FolderAccessLogs,
		t.Permissions,
		t.Files,
		t.Folders,
		t.Organizations,
	}
}

// CreateConnectionPool creates a pgx pool and pings the database.
//
// Behind PgBouncer in transaction pooling mode (port 6543) prepared statements
// break, so the pool switches to QueryExecModeCacheDescribe unless the
// connection string already chose a mode via default_query_exec_mode.
// Table prefixes are interpolated before statements are prepared, so each
// environment gets its own statement cache entries.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the context transaction if there is one, else the pool.
// Repositories call it for every statement so they join transactions opened by
// TransactionManager.ExecTx.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
