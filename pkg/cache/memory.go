package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memorySweepInterval is how often the background sweep removes expired
// entries. Expired entries are also dropped lazily on Get, so the sweep only
// bounds memory held by keys that are never read again.
const memorySweepInterval = time.Minute

// memoryEntry is one cached value plus its LRU bookkeeping.
type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is an in-process LRU cache with per-entry TTL. Entries are
// kept in a doubly-linked list ordered by recency; inserting past maxItems
// evicts from the tail.
type MemoryBackend struct {
	mu       sync.Mutex
	maxItems int
	entries  map[string]*list.Element
	lru      *list.List

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewMemoryBackend creates a memory backend holding at most maxItems
// entries. maxItems <= 0 means unbounded.
func NewMemoryBackend(maxItems int) *MemoryBackend {
	b := &MemoryBackend{
		maxItems: maxItems,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		stopCh:   make(chan struct{}),
	}
	go b.sweep()
	return b
}

// Get returns the value for key. An expired entry counts as a miss and is
// removed.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	elem, ok := b.entries[key]
	if !ok {
		return nil, false, nil
	}

	entry := elem.Value.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		b.removeLocked(elem)
		return nil, false, nil
	}

	b.lru.MoveToFront(elem)
	return entry.value, true, nil
}

// Set stores value under key for ttl, evicting the least recently used
// entry when the cache is full.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt := time.Now().Add(ttl)

	if elem, ok := b.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		b.lru.MoveToFront(elem)
		return nil
	}

	if b.maxItems > 0 && b.lru.Len() >= b.maxItems {
		if tail := b.lru.Back(); tail != nil {
			b.removeLocked(tail)
		}
	}

	elem := b.lru.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	b.entries[key] = elem
	return nil
}

// Delete removes key.
func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elem, ok := b.entries[key]; ok {
		b.removeLocked(elem)
	}
	return nil
}

// Clear removes every entry.
func (b *MemoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]*list.Element)
	b.lru.Init()
	return nil
}

// Len returns the current number of entries.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lru.Len()
}

// Close stops the background sweep goroutine.
func (b *MemoryBackend) Close() error {
	b.closeOnce.Do(func() {
		close(b.stopCh)
	})
	return nil
}

// removeLocked unlinks an element. Caller holds mu.
func (b *MemoryBackend) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	delete(b.entries, entry.key)
	b.lru.Remove(elem)
}

// sweep periodically removes expired entries until Close.
func (b *MemoryBackend) sweep() {
	ticker := time.NewTicker(memorySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.removeExpired()
		case <-b.stopCh:
			return
		}
	}
}

// removeExpired drops every entry past its deadline.
func (b *MemoryBackend) removeExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for elem := b.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if entry := elem.Value.(*memoryEntry); now.After(entry.expiresAt) {
			b.removeLocked(elem)
		}
		elem = prev
	}
}
