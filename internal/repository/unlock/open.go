package unlock

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"docvault/internal/config"
	vaultRepo "docvault/internal/domain/repositories/vault"
)

// Open builds the unlock store selected by UNLOCK_BACKEND. The closer releases
// the Redis connection pool.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (vaultRepo.UnlockStore, io.Closer, error) {
	switch cfg.UnlockBackend {
	case "memory":
		logger.Info("unlock store ready", "backend", "memory", "session_ttl", cfg.SessionTTL)
		return NewMemoryStore(cfg.SessionTTL), io.NopCloser(nil), nil
	case "redis":
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("unlock store ready", "backend", "redis", "session_ttl", cfg.SessionTTL)
		return NewRedisStore(client, cfg.TablePrefix, cfg.SessionTTL), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown unlock backend %q", cfg.UnlockBackend)
	}
}
