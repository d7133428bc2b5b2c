// internal/store/redis.go
//
// Redis-backed TokenStore. Revoked tokens are members of a single Redis set,
// so several server processes can share one revocation list.

package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisTokens keeps revoked tokens in the set named by key.
type RedisTokens struct {
	client *redis.Client
	key    string
}

// NewRedisTokens parses url (redis://...) and pings the server.
func NewRedisTokens(ctx context.Context, url, key string) (*RedisTokens, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisTokens{client: client, key: key}, nil
}

func (r *RedisTokens) Revoke(ctx context.Context, token string) error {
	if err := r.client.SAdd(ctx, r.key, token).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisTokens) IsRevoked(ctx context.Context, token string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, token).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return ok, nil
}

// Close releases the underlying connection pool.
func (r *RedisTokens) Close() error { return r.client.Close() }

var _ TokenStore = (*RedisTokens)(nil)
