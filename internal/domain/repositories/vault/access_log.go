package vault

import (
	"context"

	"docvault/internal/domain/models/vault"
)

// AccessLogRepository appends access log entries. Nothing reads them back.
type AccessLogRepository interface {
	LogFolderAccess(ctx context.Context, entry *vault.AccessLogEntry) error
	LogFileDownload(ctx context.Context, entry *vault.AccessLogEntry) error
}
