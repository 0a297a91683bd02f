package cache

import (
	"sync"
	"time"
)

// MemCache is a simple in-memory cache backed by sync.Map.
// Items can have optional TTL. A background cleanup goroutine
// runs when NewMemCache is given a positive cleanupInterval.
type MemCache struct {
	items sync.Map
	stop  chan struct{}
	wg    sync.WaitGroup
}

type item struct {
	mu         sync.Mutex
	value      int64
	expiration int64 // unix nano; 0 means no expiration
}

// NewMemCache creates a new MemCache. If cleanupInterval > 0,
// a background goroutine will periodically remove expired items.
func NewMemCache(cleanupInterval time.Duration) *MemCache {
	m := &MemCache{
		stop: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		m.wg.Add(1)
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			defer m.wg.Done()
			for {
				select {
				case <-ticker.C:
					m.cleanup()
				case <-m.stop:
					return
				}
			}
		}()
	}
	return m
}

func (m *MemCache) Set(key string, value int64, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	m.items.Store(key, &item{
		value:      value,
		expiration: exp,
	})
}

func (m *MemCache) Get(key string) (int64, bool) {
	v, ok := m.items.Load(key)
	if !ok {
		return 0, false
	}
	it := v.(*item)
	if it.isExpired() {
		m.items.Delete(key)
		return 0, false
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.value, true
}

func (m *MemCache) Delete(key string) {
	m.items.Delete(key)
}

func (m *MemCache) Exists(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *MemCache) Flush() {
	m.items.Range(func(k, _ any) bool {
		m.items.Delete(k)
		return true
	})
}

func (m *MemCache) Close() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	m.wg.Wait()
}

func (m *MemCache) Keys() []string {
	keys := make([]string, 0)
	now := time.Now().UnixNano()
	m.items.Range(func(k, v any) bool {
		it := v.(*item)
		if it.expiration == 0 || now <= it.expiration {
			if ks, ok := k.(string); ok {
				keys = append(keys, ks)
			}
		}
		return true
	})
	return keys
}

// Increment increases the value stored at key by delta, creating the
// entry at delta if it does not exist. The per-item mutex makes the
// read-modify-write atomic across goroutines.
func (m *MemCache) Increment(key string, delta int64) int64 {
	actual, _ := m.items.LoadOrStore(key, &item{})
	it := actual.(*item)

	it.mu.Lock()
	defer it.mu.Unlock()

	if it.isExpired() {
		it.value = 0
		it.expiration = 0
	}

	it.value += delta
	return it.value
}

func (it *item) isExpired() bool {
	if it == nil || it.expiration == 0 {
		return false
	}
	return time.Now().UnixNano() > it.expiration
}

func (m *MemCache) cleanup() {
	now := time.Now().UnixNano()
	m.items.Range(func(k, v any) bool {
		it := v.(*item)
		if it.expiration != 0 && now > it.expiration {
			m.items.Delete(k)
		}
		return true
	})
}
