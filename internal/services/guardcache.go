package services

import (
	"sync"
	"time"
)

// GuardEntry is the account snapshot the route guard checks on every request:
// live status and role set, fetched from the database and held briefly so a
// burst of requests does not trigger a query each.
type GuardEntry struct {
	Status string
	Roles  []string
}

type guardItem struct {
	entry     GuardEntry
	expiresAt time.Time
}

// GuardCache is a process-local TTL map of user id to GuardEntry. Entries are
// lost on restart and never shared across instances; the guard treats a miss
// as a reason to reload, so staleness is bounded by the TTL.
type GuardCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]guardItem
	load  func(userID string) (GuardEntry, error)
	now   func() time.Time
}

func NewGuardCache(ttl time.Duration, load func(userID string) (GuardEntry, error)) *GuardCache {
	return &GuardCache{
		ttl:   ttl,
		items: map[string]guardItem{},
		load:  load,
		now:   time.Now,
	}
}

// Get returns the cached entry for userID, loading a fresh one when absent
// or expired.
func (c *GuardCache) Get(userID string) (GuardEntry, error) {
	c.mu.Lock()
	item, ok := c.items[userID]
	if ok && c.now().Before(item.expiresAt) {
		c.mu.Unlock()
		return item.entry, nil
	}
	c.mu.Unlock()

	entry, err := c.load(userID)
	if err != nil {
		return GuardEntry{}, err
	}
	c.mu.Lock()
	c.items[userID] = guardItem{entry: entry, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return entry, nil
}

// Invalidate drops the entry so the next request reloads; called after role
// or status changes so admin actions take effect immediately.
func (c *GuardCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

// Sweep removes expired entries. Run periodically from main.
func (c *GuardCache) Sweep() {
	c.mu.Lock()
	now := c.now()
	for key, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
}

func (c *GuardCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
