package session

import (
	"context"
	"sync"
	"time"

	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體內的 session 儲存，支援 TTL、定期清理與 LRU 淘汰
type MemoryStore struct {
	ttl     time.Duration
	maxSize int

	mu    sync.Mutex
	store map[string]memoryEntry
	stats memoryStats

	done      chan struct{}
	closeOnce sync.Once
}

// memoryEntry 儲存條目
type memoryEntry struct {
	value       []byte
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// memoryStats 儲存統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建記憶體儲存並啟動清理協程
func NewMemoryStore(cfg config.SessionConfig) *MemoryStore {
	m := &MemoryStore{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		store:   make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	if m.ttl <= 0 {
		m.ttl = 24 * time.Hour
	}
	if m.maxSize <= 0 {
		m.maxSize = 10000
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go m.startCleanup(interval)

	common.LogInfo("Memory session store initialized",
		zap.Int("max_size", m.maxSize),
		zap.Duration("ttl", m.ttl),
		zap.Duration("cleanup_interval", interval),
	)
	return m
}

// Get 讀取值並延長存活時間
func (m *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(id)
	if !ok {
		m.stats.misses++
		return nil, ErrNotFound
	}
	m.stats.hits++
	m.touch(id, entry)
	return copyBytes(entry.value), nil
}

// Set 寫入值，容量已滿時先清理過期項目再淘汰最少使用的項目
func (m *MemoryStore) Set(_ context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[id]; !exists && len(m.store) >= m.maxSize {
		m.cleanup()
		for len(m.store) >= m.maxSize {
			m.evictLRU()
		}
	}

	now := time.Now()
	m.store[id] = memoryEntry{
		value:      copyBytes(data),
		expiresAt:  now.Add(m.ttl),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// Delete 刪除值
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// Update 在鎖內完成讀取、修改、寫回
func (m *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(id)
	if !ok {
		return ErrNotFound
	}

	next, err := fn(copyBytes(entry.value))
	if err != nil {
		return err
	}
	entry.value = copyBytes(next)
	m.touch(id, entry)
	return nil
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len 目前保存的項目數（含尚未清理的過期項目）
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// GetStats 獲取統計信息
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
	}
}

// Close 停止清理協程並清空資料
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.mu.Lock()
		defer m.mu.Unlock()
		m.store = make(map[string]memoryEntry)
		common.LogInfo("Memory session store closed",
			zap.Int64("hits", m.stats.hits),
			zap.Int64("misses", m.stats.misses),
			zap.Int64("evictions", m.stats.evictions),
		)
	})
	return nil
}

// lookup 取出未過期的條目；過期的條目順便刪除。呼叫端需持有鎖
func (m *MemoryStore) lookup(id string) (memoryEntry, bool) {
	entry, ok := m.store[id]
	if !ok {
		return memoryEntry{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.store, id)
		m.stats.evictions++
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryStore) touch(id string, entry memoryEntry) {
	now := time.Now()
	entry.lastAccess = now
	entry.expiresAt = now.Add(m.ttl)
	entry.accessCount++
	m.store[id] = entry
}

// startCleanup 定期清理過期項目
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的項目，呼叫端需持有鎖
func (m *MemoryStore) cleanup() int {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired sessions",
			zap.Int("count", count),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰存取次數最少、最久未使用的項目
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("Session evicted (LRU)", zap.String("session_id", oldestKey))
	}
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
