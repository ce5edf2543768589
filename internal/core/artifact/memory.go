package artifact

import (
	"context"
	"sync"
	"time"

	"travel-drink-generator/internal/infrastructure/config"
	"travel-drink-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體快取，支援 TTL 與 LRU 淘汰
type MemoryStore struct {
	cfg   config.CacheConfig
	mu    sync.Mutex
	store map[string]entry
	stats Stats
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// entry 緩存條目
type entry struct {
	value       []byte
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// NewMemoryStore 創建記憶體快取並啟動清理協程
func NewMemoryStore(cfg config.CacheConfig) *MemoryStore {
	m := &MemoryStore{
		cfg:   cfg,
		store: make(map[string]entry),
		stats: Stats{Backend: config.CacheBackendMemory, MaxSize: cfg.MaxSize},
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("PDF 快取已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// Get 獲取緩存值
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.store[key]
	if !exists {
		m.stats.Misses++
		common.LogCacheMiss(config.CacheBackendMemory, key)
		return nil, ErrNotFound
	}

	// 檢查是否過期
	if m.now().After(e.expiresAt) {
		delete(m.store, key)
		m.stats.Evictions++
		m.stats.Misses++
		common.LogDebug("快取已過期", zap.String("鍵", key))
		return nil, ErrNotFound
	}

	e.lastAccess = m.now()
	e.accessCount++
	m.store[key] = e
	m.stats.Hits++
	common.LogCacheHit(config.CacheBackendMemory, key)
	return e.value, nil
}

// Put 設置緩存值
func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.cfg.MaxSize {
		// 先清理過期項目，仍滿則淘汰最少使用者
		if evicted := m.cleanup(); evicted > 0 {
			common.LogDebug("快取清理執行", zap.Int("清理數量", evicted))
		}
		if len(m.store) >= m.cfg.MaxSize {
			m.evictLRU()
		}
		if len(m.store) >= m.cfg.MaxSize {
			m.stats.Errors++
			common.LogWarn("快取已滿", zap.Int("目前容量", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := m.now()
	m.store[key] = entry{
		value:      data,
		expiresAt:  now.Add(m.cfg.TTL),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// startCleanup 定期清理過期項目
func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期的緩存，呼叫前須持有鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0

	for key, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.Evictions++
		}
	}

	if count > 0 {
		common.LogDebug("已清理過期快取",
			zap.Int("count", count),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰最少訪問、最久未用的項目
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, e := range m.store {
		if oldestKey == "" ||
			e.accessCount < lowestAccessCount ||
			(e.accessCount == lowestAccessCount && e.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = e.lastAccess
			lowestAccessCount = e.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.Evictions++
		common.LogDebug("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 獲取緩存統計信息
func (m *MemoryStore) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Size = len(m.store)
	return s
}

// Close 停止清理協程並清空快取
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]entry)
	common.LogInfo("PDF 快取已關閉",
		zap.Int64("命中次數", m.stats.Hits),
		zap.Int64("未命中次數", m.stats.Misses),
		zap.Int64("淘汰次數", m.stats.Evictions),
	)
	return nil
}
