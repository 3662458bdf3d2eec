package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

var _ domain.KeyValueStore = (*RedisStore)(nil)

// NewRedisClient connects and pings once, so a misconfigured backend fails at
// startup instead of degrading every read to an empty state.
func NewRedisClient(host, port, password string, dbIndex int) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           dbIndex,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis store: connect %s: %w: %v", addr, domain.ErrStoreUnavailable, err)
	}

	return rdb, nil
}

// RedisStore persists values without expiry: stale records are removed by
// their owner, not by TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("redis store: get %s failed: %w: %v", key, domain.ErrStoreUnavailable, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis store: set %s failed: %w: %v", key, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis store: del %s failed: %w: %v", key, domain.ErrStoreUnavailable, err)
	}
	return nil
}
