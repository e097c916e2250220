package vault

import (
	"context"
	"fmt"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/vault"
	vaultRepo "docvault/internal/domain/repositories/vault"
	"docvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = `id, folder_id, organization_id, name, storage_path, size_bytes, mime_type, uploaded_by, uploaded_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) vaultRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.FolderID,
		&file.OrganizationID,
		&file.Name,
		&file.StoragePath,
		&file.SizeBytes,
		&file.MimeType,
		&file.UploadedBy,
		&file.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Create records a file row
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, organization_id, name, storage_path, size_bytes, mime_type, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, uploaded_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.FolderID,
		file.OrganizationID,
		file.Name,
		file.StoragePath,
		file.SizeBytes,
		file.MimeType,
		file.UploadedBy,
		file.UploadedAt,
	).Scan(&file.ID, &file.UploadedAt)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			return fmt.Errorf("storage path %s already recorded: %w", file.StoragePath, domain.ErrConflict)
		case postgres.IsPgForeignKeyError(err):
			return domain.NewNotFoundError("folder not found")
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file scoped to an organization
func (r *PostgresFileRepository) GetByID(ctx context.Context, id, orgID string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND organization_id = $2
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFoundError("file %s not found", id)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// UpdateName renames a file row
func (r *PostgresFileRepository) UpdateName(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("file %s not found", id)
	}

	return nil
}

// Delete removes a file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("file %s not found", id)
	}

	return nil
}

// ListByFolder lists files of a folder (nil = organization root) ordered by name
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID *string, orgID string) ([]models.File, error) {
	var query string
	var args []any

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE organization_id = $1 AND folder_id IS NULL
			ORDER BY name
		`, fileColumns, r.tables.Files)
		args = []any{orgID}
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE organization_id = $1 AND folder_id = $2
			ORDER BY name
		`, fileColumns, r.tables.Files)
		args = []any{orgID, *folderID}
	}

	return r.list(ctx, query, args...)
}

// ListByOrganization lists every file row of an organization
func (r *PostgresFileRepository) ListByOrganization(ctx context.Context, orgID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE organization_id = $1
		ORDER BY uploaded_at
	`, fileColumns, r.tables.Files)

	return r.list(ctx, query, orgID)
}

func (r *PostgresFileRepository) list(ctx context.Context, query string, args ...any) ([]models.File, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}
