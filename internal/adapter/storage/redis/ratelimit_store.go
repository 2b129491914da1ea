package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// windowScript counts a hit and starts the window on the first one. It
// returns the count and the milliseconds left in the window.
var windowScript = goredis.NewScript(`
local n = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if n == 1 or ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RateLimitStore counts requests per caller and route group. A window opens
// with the caller's first request rather than on a clock boundary, so a
// burst straddling a minute mark cannot get twice the limit.
type RateLimitStore struct {
	client goredis.Scripter
	prefix string
	now    func() time.Time
}

func NewRateLimitStore(client goredis.Scripter) *RateLimitStore {
	return &RateLimitStore{client: client, prefix: "ratelimit:", now: time.Now}
}

// RateLimitResult is one counted request.
type RateLimitResult struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration // time until the window closes
	ResetAt    time.Time
}

// Allow counts one request for key against limit per window.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	if window < time.Millisecond {
		window = time.Second
	}
	vals, err := windowScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("rate limit %s: unexpected reply %v", key, vals)
	}

	count, left := vals[0], time.Duration(vals[1])*time.Millisecond
	return &RateLimitResult{
		Allowed:    count <= limit,
		Limit:      limit,
		Remaining:  max(limit-count, 0),
		RetryAfter: left,
		ResetAt:    s.now().Add(left),
	}, nil
}
