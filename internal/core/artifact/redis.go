package artifact

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"travel-drink-generator/internal/infrastructure/config"
	"travel-drink-generator/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// RedisStore 以 Redis 保存 PDF，多個實例可共用連結
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewRedisStore 建立連線並測試
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    ttl,
	}, nil
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.misses.Add(1)
			common.LogCacheMiss(config.CacheBackendRedis, key)
			return nil, ErrNotFound
		}
		s.errors.Add(1)
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	s.hits.Add(1)
	common.LogCacheHit(config.CacheBackendRedis, key)
	return data, nil
}

// Put 設置緩存
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("failed to set artifact: %w", err)
	}
	return nil
}

// Stats 回傳計數；Size 不逐一掃描鍵，固定為 0
func (s *RedisStore) Stats() Stats {
	return Stats{
		Backend: config.CacheBackendRedis,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Errors:  s.errors.Load(),
	}
}

// Ping 供就緒檢查使用
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
