package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// SequenceStore implements ports.SequenceStore with Redis INCR. Sequence
// numbers are strictly increasing per reader and shared by every instance.
type SequenceStore struct {
	client *goredis.Client
	prefix string
}

func NewSequenceStore(client *goredis.Client) *SequenceStore {
	return &SequenceStore{
		client: client,
		prefix: "reader-seq:",
	}
}

func (s *SequenceStore) Next(ctx context.Context, readerID string) (int64, error) {
	n, err := s.client.Incr(ctx, s.prefix+readerID).Result()
	if err != nil {
		return 0, fmt.Errorf("redis sequence incr: %w", err)
	}
	return n, nil
}
