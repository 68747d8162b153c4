package credential

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// Redis is a Store backed by a single Redis key, for deployments where
// several processes share one dashboard session. The Store interface is
// synchronous, so each operation runs under a short internal deadline.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis builds a Redis store over client using key. An empty key
// defaults to "gtindata:credential".
func NewRedis(client redis.UniversalClient, key string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if key == "" {
		key = "gtindata:credential"
	}
	return &Redis{client: client, key: key}, nil
}

// Get implements Store. Redis being unreachable reports the credential
// as absent; the next authenticated call will then fail loudly through
// the engine instead of here.
func (r *Redis) Get() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	token, err := r.client.Get(ctx, r.key).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// Set implements Store.
func (r *Redis) Set(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return r.client.Set(ctx, r.key, token, 0).Err()
}

// Clear implements Store.
func (r *Redis) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return r.client.Del(ctx, r.key).Err()
}
