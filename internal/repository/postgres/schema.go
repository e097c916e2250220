package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates tables and indexes if they don't exist.
//
// Composite foreign keys on (id, organization_id) make the database reject a
// folder whose parent, or a file whose folder, lives in another organization.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Organizations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organization_id UUID NOT NULL REFERENCES ` + tables.Organizations + `(id),
			parent_folder_id UUID,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			password_hash TEXT,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (id, organization_id),
			UNIQUE NULLS NOT DISTINCT (organization_id, parent_folder_id, name),
			FOREIGN KEY (parent_folder_id, organization_id)
				REFERENCES ` + tables.Folders + `(id, organization_id)
		)`,

		`CREATE INDEX IF NOT EXISTS ` + tables.Folders + `_parent_idx
			ON ` + tables.Folders + ` (organization_id, parent_folder_id)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Files + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			folder_id UUID,
			organization_id UUID NOT NULL REFERENCES ` + tables.Organizations + `(id),
			name TEXT NOT NULL,
			storage_path TEXT NOT NULL UNIQUE,
			size_bytes BIGINT NOT NULL CHECK (size_bytes >= 0),
			mime_type TEXT NOT NULL,
			uploaded_by TEXT NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			FOREIGN KEY (folder_id, organization_id)
				REFERENCES ` + tables.Folders + `(id, organization_id)
		)`,

		`CREATE INDEX IF NOT EXISTS ` + tables.Files + `_folder_idx
			ON ` + tables.Files + ` (organization_id, folder_id)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Permissions + ` (
			user_id TEXT NOT NULL,
			folder_id UUID NOT NULL REFERENCES ` + tables.Folders + `(id),
			level TEXT NOT NULL CHECK (level IN ('read', 'write', 'admin')),
			granted_by TEXT NOT NULL,
			granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, folder_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.FolderAccessLogs + ` (
			id BIGSERIAL PRIMARY KEY,
			folder_id UUID NOT NULL,
			user_id TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			accessed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.FileDownloadLogs + ` (
			id BIGSERIAL PRIMARY KEY,
			file_id UUID NOT NULL,
			user_id TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			accessed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops every table of the prefix
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
