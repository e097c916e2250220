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

// PostgresPermissionRepository implements the PermissionRepository interface
type PostgresPermissionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(config *postgres.RepositoryConfig) vaultRepo.PermissionRepository {
	return &PostgresPermissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanGrant(row pgx.Row) (*models.PermissionGrant, error) {
	var grant models.PermissionGrant
	var level string
	if err := row.Scan(&grant.UserID, &grant.FolderID, &level, &grant.GrantedBy, &grant.GrantedAt); err != nil {
		return nil, err
	}
	parsed, err := models.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	grant.Level = parsed
	return &grant, nil
}

// Upsert inserts the grant or replaces the level of the existing one in a
// single statement, so two concurrent grants never leave two rows.
func (r *PostgresPermissionRepository) Upsert(ctx context.Context, grant *models.PermissionGrant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, folder_id, level, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, folder_id)
		DO UPDATE SET level = EXCLUDED.level, granted_by = EXCLUDED.granted_by, granted_at = EXCLUDED.granted_at
		RETURNING granted_at
	`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		grant.UserID,
		grant.FolderID,
		grant.Level.String(),
		grant.GrantedBy,
		grant.GrantedAt,
	).Scan(&grant.GrantedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFoundError("folder %s not found", grant.FolderID)
		}
		return fmt.Errorf("upsert permission: %w", err)
	}

	return nil
}

// Delete removes a grant if present
func (r *PostgresPermissionRepository) Delete(ctx context.Context, userID, folderID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND folder_id = $2`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, folderID); err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return nil
}

// DeleteByFolder removes every grant on a folder
func (r *PostgresPermissionRepository) DeleteByFolder(ctx context.Context, folderID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = $1`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderID); err != nil {
		return fmt.Errorf("delete folder permissions: %w", err)
	}
	return nil
}

// Get retrieves a single grant
func (r *PostgresPermissionRepository) Get(ctx context.Context, userID, folderID string) (*models.PermissionGrant, error) {
	query := fmt.Sprintf(`
		SELECT user_id, folder_id, level, granted_by, granted_at
		FROM %s
		WHERE user_id = $1 AND folder_id = $2
	`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	grant, err := scanGrant(executor.QueryRow(ctx, query, userID, folderID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, domain.NewNotFoundError("no permission for user %s on folder %s", userID, folderID)
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return grant, nil
}

// ListByFolder lists grants on a folder ordered by user
func (r *PostgresPermissionRepository) ListByFolder(ctx context.Context, folderID string) ([]models.PermissionGrant, error) {
	query := fmt.Sprintf(`
		SELECT user_id, folder_id, level, granted_by, granted_at
		FROM %s
		WHERE folder_id = $1
		ORDER BY user_id
	`, r.tables.Permissions)

	return r.list(ctx, query, folderID)
}

// ListGrantedBy lists grants issued by a user, newest first
func (r *PostgresPermissionRepository) ListGrantedBy(ctx context.Context, userID string) ([]models.PermissionGrant, error) {
	query := fmt.Sprintf(`
		SELECT user_id, folder_id, level, granted_by, granted_at
		FROM %s
		WHERE granted_by = $1
		ORDER BY granted_at DESC
	`, r.tables.Permissions)

	return r.list(ctx, query, userID)
}

func (r *PostgresPermissionRepository) list(ctx context.Context, query string, args ...any) ([]models.PermissionGrant, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	grants := []models.PermissionGrant{}
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		grants = append(grants, *grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return grants, nil
}
