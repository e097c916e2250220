package vault

import (
	"context"
	"fmt"

	models "docvault/internal/domain/models/vault"
	vaultRepo "docvault/internal/domain/repositories/vault"
	"docvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAccessLogRepository appends folder access and file download entries
type PostgresAccessLogRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAccessLogRepository creates a new access log repository
func NewAccessLogRepository(config *postgres.RepositoryConfig) vaultRepo.AccessLogRepository {
	return &PostgresAccessLogRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresAccessLogRepository) LogFolderAccess(ctx context.Context, entry *models.AccessLogEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, user_id, ip_address, accessed_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.FolderAccessLogs)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, entry.SubjectID, entry.ActorID, entry.IPAddress, entry.AccessedAt); err != nil {
		return fmt.Errorf("log folder access: %w", err)
	}
	return nil
}

func (r *PostgresAccessLogRepository) LogFileDownload(ctx context.Context, entry *models.AccessLogEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (file_id, user_id, ip_address, accessed_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.FileDownloadLogs)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, entry.SubjectID, entry.ActorID, entry.IPAddress, entry.AccessedAt); err != nil {
		return fmt.Errorf("log file download: %w", err)
	}
	return nil
}
