// Package dedup suppresses re-forwarding of agent activities that are seen
// more than once, e.g. by the synchronous poll and a concurrently started
// watcher. Each chat keeps a bounded FIFO of recent activity ids; the bound
// is a memory cap, not a correctness guarantee — an id evicted and seen again
// would be treated as new, which is acceptable at this capacity.
package dedup

import "sync"

type chatHistory struct {
	order []string
	seen  map[string]struct{}
}

// Cache tracks recently seen activity ids per chat.
type Cache struct {
	mu       sync.Mutex
	capacity int
	chats    map[int64]*chatHistory
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache{
		capacity: capacity,
		chats:    make(map[int64]*chatHistory),
	}
}

// Seen reports whether the activity id has already been recorded for the chat.
func (c *Cache) Seen(chatID int64, activityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.chats[chatID]
	if !ok {
		return false
	}
	_, ok = h.seen[activityID]
	return ok
}

// Record marks the activity id as seen, evicting the oldest entry once the
// chat's history is full. Recording an already-seen id is a no-op.
func (c *Cache) Record(chatID int64, activityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.chats[chatID]
	if !ok {
		h = &chatHistory{seen: make(map[string]struct{})}
		c.chats[chatID] = h
	}
	if _, dup := h.seen[activityID]; dup {
		return
	}

	if len(h.order) >= c.capacity {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.seen, oldest)
	}
	h.order = append(h.order, activityID)
	h.seen[activityID] = struct{}{}
}

// Clear drops all history for a chat.
func (c *Cache) Clear(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.chats, chatID)
}
