package cache

import (
	"sync"
	"time"

	"taskbuddy-api/internal/models"
)

// entry stores a cached list and its absolute expiration timestamp.
type entry struct {
	tasks     []models.Task
	expiresAt time.Time // zero means no expiration
}

func (e entry) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// MemoryTaskLists is a map-backed TaskLists guarded by a RWMutex.
// Expired lists are dropped lazily or by PurgeExpired.
type MemoryTaskLists struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry
}

// NewMemoryTaskLists constructs an empty cache. defaultTTL is applied by
// Update when it has to refresh an entry's expiry.
func NewMemoryTaskLists(defaultTTL time.Duration) *MemoryTaskLists {
	return &MemoryTaskLists{
		ttl:   defaultTTL,
		items: make(map[string]entry),
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

func cloneTasks(in []models.Task) []models.Task {
	if in == nil {
		return []models.Task{}
	}
	out := make([]models.Task, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func (c *MemoryTaskLists) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now().Add(c.ttl)
}

// Get implements TaskLists.Get.
func (c *MemoryTaskLists) Get(userID string) ([]models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[userID]
	if !ok || e.expired(now()) {
		return nil, false
	}
	return cloneTasks(e.tasks), true
}

// Set implements TaskLists.Set.
func (c *MemoryTaskLists) Set(userID string, tasks []models.Task, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}
	c.items[userID] = entry{tasks: cloneTasks(tasks), expiresAt: exp}
}

// Update implements TaskLists.Update.
func (c *MemoryTaskLists) Update(userID string, fn func([]models.Task) []models.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[userID]
	if !ok || e.expired(now()) {
		delete(c.items, userID)
		return false
	}
	c.items[userID] = entry{tasks: cloneTasks(fn(e.tasks)), expiresAt: c.expiry()}
	return true
}

// Delete implements TaskLists.Delete.
func (c *MemoryTaskLists) Delete(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
}

// Len implements TaskLists.Len. It counts only non-expired lists.
func (c *MemoryTaskLists) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ts := now()
	count := 0
	for _, e := range c.items {
		if !e.expired(ts) {
			count++
		}
	}
	return count
}

// PurgeExpired implements TaskLists.PurgeExpired.
func (c *MemoryTaskLists) PurgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := now()
	for k, e := range c.items {
		if e.expired(ts) {
			delete(c.items, k)
		}
	}
}

var _ TaskLists = (*MemoryTaskLists)(nil)
