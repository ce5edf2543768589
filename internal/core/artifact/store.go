package artifact

import (
	"context"
	"errors"
	"fmt"

	"travel-drink-generator/internal/infrastructure/config"
)

// ErrNotFound 表示檔案不存在或已過期
var ErrNotFound = errors.New("artifact not found")

// Store 暫存產生的 PDF 檔案
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Stats() Stats
	Close() error
}

// Stats 快取統計
type Stats struct {
	Backend   string `json:"backend"`
	Size      int    `json:"size"`
	MaxSize   int    `json:"max_size,omitempty"`
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Evictions int64  `json:"evictions"`
	Errors    int64  `json:"errors"`
}

// New 依設定建立對應後端
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return NewRedisStore(ctx, cfg.Redis, cfg.Cache.TTL)
	case config.CacheBackendMemory, "":
		return NewMemoryStore(cfg.Cache), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
