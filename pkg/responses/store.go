package responses

import (
	"container/list"
	"sync"
	"time"
)

// Store defaults.
const (
	DefaultStoreMaxEntries = 1000
	DefaultStoreTTL        = time.Hour

	storeSweepInterval = time.Minute
)

// StoredRecord is what the store keeps per response: the response itself and
// the input that produced it, so a continuation can replay the conversation.
type StoredRecord struct {
	Response *Response
	Input    []InputItem
}

type storeEntry struct {
	id        string
	record    *StoredRecord
	expiresAt time.Time
}

// Store keeps recent responses in memory so a follow-up request carrying
// previous_response_id can continue the conversation. Bounded LRU with
// per-entry TTL; a background sweeper evicts expired entries between reads.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewStore creates a store. Non-positive maxEntries and ttl fall back to the
// package defaults.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultStoreMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultStoreTTL
	}

	s := &Store{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		stopCh:     make(chan struct{}),
	}

	go s.sweep()

	return s
}

// Save records a response under its ID, evicting the least recently used
// entry when the store is full.
func (s *Store) Save(resp *Response, input []InputItem) {
	if resp == nil || resp.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &storeEntry{
		id:        resp.ID,
		record:    &StoredRecord{Response: resp, Input: input},
		expiresAt: time.Now().Add(s.ttl),
	}

	if elem, ok := s.entries[resp.ID]; ok {
		elem.Value = entry
		s.order.MoveToFront(elem)
		return
	}

	if s.order.Len() >= s.maxEntries {
		if oldest := s.order.Back(); oldest != nil {
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(*storeEntry).id)
		}
	}

	s.entries[resp.ID] = s.order.PushFront(entry)
}

// Get returns the record stored under id. An expired entry counts as a miss
// and is removed.
func (s *Store) Get(id string) (*StoredRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[id]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*storeEntry)
	if time.Now().After(entry.expiresAt) {
		s.order.Remove(elem)
		delete(s.entries, id)
		return nil, false
	}

	s.order.MoveToFront(elem)
	return entry.record, true
}

// Delete removes the record stored under id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[id]; ok {
		s.order.Remove(elem)
		delete(s.entries, id)
	}
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

// Close stops the background sweeper.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})
}

// sweep periodically evicts expired entries until Close.
func (s *Store) sweep() {
	ticker := time.NewTicker(storeSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) evictExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		entry := elem.Value.(*storeEntry)
		if now.After(entry.expiresAt) {
			s.order.Remove(elem)
			delete(s.entries, entry.id)
		}
		elem = prev
	}
}

// ExpandInput builds the input for a continuation request: the prior turn's
// input, then its outputs projected back into input items, then the new
// input.
//
// A message output becomes an assistant message whose output_text parts turn
// into input_text; a function_call output becomes a function_call_output
// with an empty output, a placeholder that keeps the call visible in the
// transcript when the client never reported a result.
func ExpandInput(prev *StoredRecord, next []InputItem) []InputItem {
	expanded := make([]InputItem, 0, len(prev.Input)+len(prev.Response.Output)+len(next))
	expanded = append(expanded, prev.Input...)

	for _, item := range prev.Response.Output {
		switch item.Type {
		case ItemTypeMessage:
			var content ContentList
			for _, part := range item.Content {
				if part.Type == PartOutputText {
					content = append(content, ContentPart{Type: PartInputText, Text: part.Text})
				}
			}
			expanded = append(expanded, InputItem{
				Type:    ItemTypeMessage,
				Role:    item.Role,
				Content: content,
			})

		case ItemTypeFunctionCall:
			expanded = append(expanded, InputItem{
				Type:   ItemTypeFunctionCallOutput,
				CallID: item.CallID,
				Output: "",
			})
		}
	}

	return append(expanded, next...)
}
