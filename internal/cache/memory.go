package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Cache. Expired entries are dropped lazily on read
// and swept by a background loop when one is started with NewMemory.
type Memory struct {
	entries sync.Map // key -> *memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemory creates a Memory cache and starts a sweep loop that stops when
// ctx is cancelled.
func NewMemory(ctx context.Context, sweepInterval time.Duration) *Memory {
	m := &Memory{}
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	go m.sweepLoop(ctx, sweepInterval)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := m.entries.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		m.entries.Delete(key)
		return nil, false
	}
	return entry.payload, true
}

func (m *Memory) Set(_ context.Context, key string, payload []byte, ttl time.Duration) {
	m.entries.Store(key, &memoryEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	})
}

func (m *Memory) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			m.entries.Range(func(key, val any) bool {
				if entry, ok := val.(*memoryEntry); ok && now.After(entry.expiresAt) {
					m.entries.Delete(key)
				}
				return true
			})
		}
	}
}
