package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the caller still owns it, so a
// holder whose TTL lapsed cannot free a lock taken over by someone else.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReaderLock implements ports.ReaderLock using Redis SET NX PX.
type ReaderLock struct {
	client *goredis.Client
	prefix string
}

// NewReaderLock creates a new Redis-backed per-reader lock.
func NewReaderLock(client *goredis.Client) *ReaderLock {
	return &ReaderLock{
		client: client,
		prefix: "reader-lock:",
	}
}

// Acquire takes the lock for readerID. Returns ok=false if it is held.
func (l *ReaderLock) Acquire(ctx context.Context, readerID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	_, err := l.client.SetArgs(ctx, l.prefix+readerID, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis reader lock acquire: %w", err)
	}
	return token, true, nil
}

// Release frees the lock if token still owns it.
func (l *ReaderLock) Release(ctx context.Context, readerID string, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + readerID}, token).Err(); err != nil {
		return fmt.Errorf("redis reader lock release: %w", err)
	}
	return nil
}
