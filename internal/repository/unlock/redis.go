package unlock

import (
	"context"
	"fmt"
	"strings"
	"time"

	vaultRepo "docvault/internal/domain/repositories/vault"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one key per unlocked folder plus a per-session set of folder
// ids, so ForgetSession only touches the session's own keys. Both expire with
// the session lifetime.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient parses a redis:// URL and pings the server
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// segmentEscaper keeps ":" out of key segments, so every key splits back into
// exactly the ids it was built from
var segmentEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func (s *RedisStore) key(kind string, ids ...string) string {
	var b strings.Builder
	b.WriteString(s.keyPrefix)
	b.WriteString("unlock:")
	b.WriteString(kind)
	for _, id := range ids {
		b.WriteByte(':')
		b.WriteString(segmentEscaper.Replace(id))
	}
	return b.String()
}

// sessionKey names the set indexing a session's unlocked folders
func (s *RedisStore) sessionKey(orgID, userID, sessionID string) string {
	return s.key("session", orgID, userID, sessionID)
}

func (s *RedisStore) folderKey(key vaultRepo.UnlockKey) string {
	return s.key("folder", key.OrganizationID, key.UserID, key.SessionID, key.FolderID)
}

func (s *RedisStore) MarkUnlocked(ctx context.Context, key vaultRepo.UnlockKey) error {
	index := s.sessionKey(key.OrganizationID, key.UserID, key.SessionID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.folderKey(key), 1, s.ttl)
	pipe.SAdd(ctx, index, key.FolderID)
	if s.ttl > 0 {
		pipe.Expire(ctx, index, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark folder unlocked: %w", err)
	}
	return nil
}

func (s *RedisStore) IsUnlocked(ctx context.Context, key vaultRepo.UnlockKey) (bool, error) {
	n, err := s.client.Exists(ctx, s.folderKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("check folder unlock: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) ForgetSession(ctx context.Context, orgID, userID, sessionID string) error {
	index := s.sessionKey(orgID, userID, sessionID)

	folders, err := s.client.SMembers(ctx, index).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("list session unlocks: %w", err)
	}

	keys := make([]string, 0, len(folders)+1)
	for _, folderID := range folders {
		keys = append(keys, s.folderKey(vaultRepo.UnlockKey{
			OrganizationID: orgID,
			UserID:         userID,
			SessionID:      sessionID,
			FolderID:       folderID,
		}))
	}
	keys = append(keys, index)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("forget session unlocks: %w", err)
	}
	return nil
}
