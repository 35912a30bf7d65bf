// Package status holds the manager status snapshot and its expiring cache.
package status

import (
	"context"
	"sync"
	"time"
)

// Snapshot is one fetched status document. It is never mutated after
// creation, only replaced as a whole in the cache.
type Snapshot struct {
	fields    map[string]any
	fetchedAt time.Time
}

// NewSnapshot creates a snapshot from decoded server fields.
func NewSnapshot(fields map[string]any, fetchedAt time.Time) *Snapshot {
	return &Snapshot{fields: fields, fetchedAt: fetchedAt}
}

// FetchedAt is the client-side fetch timestamp.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Field returns a raw server-reported field.
func (s *Snapshot) Field(name string) (any, bool) {
	v, ok := s.fields[name]
	return v, ok
}

// Fields returns a copy of all server-reported fields.
func (s *Snapshot) Fields() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// ManagerState is the manager's top-level state (e.g. "idle",
// "executing_queue", "paused").
func (s *Snapshot) ManagerState() string {
	v, _ := s.fields["manager_state"].(string)
	return v
}

// WorkerEnvironmentExists reports whether the worker environment is open.
func (s *Snapshot) WorkerEnvironmentExists() bool {
	v, _ := s.fields["worker_environment_exists"].(bool)
	return v
}

// ItemsInQueue is the number of items in the queue.
func (s *Snapshot) ItemsInQueue() int { return s.intField("items_in_queue") }

// ItemsInHistory is the number of items in the history.
func (s *Snapshot) ItemsInHistory() int { return s.intField("items_in_history") }

// Msg is the manager identification string (e.g. "RE Manager v0.0.18").
func (s *Snapshot) Msg() string {
	v, _ := s.fields["msg"].(string)
	return v
}

func (s *Snapshot) intField(name string) int {
	switch v := s.fields[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// FetchFunc performs one status request against the manager.
type FetchFunc func(ctx context.Context) (map[string]any, error)

// Cache memoizes the last fetched snapshot with time-based expiration.
// Concurrent callers during a miss window each issue their own request;
// only the wait monitor coalesces polling traffic.
type Cache struct {
	mu         sync.Mutex
	expiration time.Duration
	snap       *Snapshot

	now func() time.Time
}

// NewCache creates a cache with the given expiration period.
func NewCache(expiration time.Duration) *Cache {
	return &Cache{expiration: expiration, now: time.Now}
}

// Get returns the current snapshot. A forced reload, an empty cache or an
// expired snapshot performs exactly one fetch and replaces the cached value;
// otherwise the cached snapshot is returned with zero network calls.
func (c *Cache) Get(ctx context.Context, reload bool, fetch FetchFunc) (*Snapshot, error) {
	c.mu.Lock()
	if !reload && c.snap != nil && c.now().Sub(c.snap.fetchedAt) < c.expiration {
		snap := c.snap
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	fields, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot(fields, c.now())
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return snap, nil
}

// Invalidate clears the cached snapshot so the next Get fetches fresh data.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

// SetExpiration changes the expiration period.
func (c *Cache) SetExpiration(d time.Duration) {
	c.mu.Lock()
	c.expiration = d
	c.mu.Unlock()
}

// Expiration returns the expiration period.
func (c *Cache) Expiration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiration
}
