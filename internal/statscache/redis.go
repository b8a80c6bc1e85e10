package statscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store kept outside the process. Keys are scoped by session so
// that a new session never sees entries of an older one, including those
// left by a previous process.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a store using keys "metaviz:stats:{scope}:{key}". A zero
// ttl stores entries without expiry.
func NewRedis(client *redis.Client, scope string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		prefix: fmt.Sprintf("metaviz:stats:%s:", scope),
		ttl:    ttl,
	}
}

func (r *Redis) makeKey(key string) string {
	return r.prefix + key
}

// Get returns the entry for key. An empty stored value is a negative entry.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.makeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("statscache: redis get %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, true, nil
	}
	return data, true, nil
}

// Set stores data under key; nil records a negative entry.
func (r *Redis) Set(ctx context.Context, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	if err := r.client.Set(ctx, r.makeKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("statscache: redis set %s: %w", key, err)
	}
	return nil
}
