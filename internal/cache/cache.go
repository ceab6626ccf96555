package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry is the stored form of one cached value.
type Entry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store persists cache entries across restarts.
type Store interface {
	LoadEntries(cache string) ([]Entry, error)
	SaveEntries(cache string, entries []Entry) error
	PurgeEntries(cache string, olderThan time.Time) error
}

// Cache is a TTL key-value cache with lazy expiry on read. Concurrent
// writers may race on a key; last-write-wins is fine because values for a
// given key describe the same external fact.
type Cache struct {
	name    string
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]Entry
	writer  *Writer
	logger  *logrus.Logger
}

// New creates an in-memory cache. Call Load to hydrate it from a store and
// AttachWriter to persist writes.
func New(name string, ttl time.Duration, logger *logrus.Logger) *Cache {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cache{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]Entry),
		logger:  logger,
	}
}

// Name returns the cache identifier used as the persistence namespace.
func (c *Cache) Name() string { return c.name }

// AttachWriter routes future writes through the debounced persister.
func (c *Cache) AttachWriter(w *Writer) { c.writer = w }

// Load hydrates the cache from the store, purges persisted entries that
// are already beyond the TTL, and sweeps what was loaded.
func (c *Cache) Load(store Store) error {
	if err := store.PurgeEntries(c.name, time.Now().Add(-c.ttl)); err != nil {
		c.logger.WithError(err).WithField("cache", c.name).Warn("Failed to purge expired persisted entries")
	}

	entries, err := store.LoadEntries(c.name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for _, e := range entries {
		c.entries[e.Key] = e
	}
	c.mu.Unlock()

	removed := c.Sweep()
	c.logger.WithFields(logrus.Fields{
		"cache":  c.name,
		"loaded": len(entries),
		"swept":  removed,
	}).Info("Loaded cache from store")
	return nil
}

// Get retrieves a value into dst. Expired entries are removed on read.
func (c *Cache) Get(key string, dst any) bool {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}

	if time.Since(e.StoredAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false
	}

	if err := json.Unmarshal(e.Value, dst); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"cache": c.name, "key": key}).Error("Failed to decode cached value")
		return false
	}
	return true
}

// Set stores a value and enqueues it for persistence when a writer is
// attached.
func (c *Cache) Set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"cache": c.name, "key": key}).Error("Failed to encode value for cache")
		return
	}

	e := Entry{Key: key, Value: raw, StoredAt: time.Now()}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	if c.writer != nil {
		if err := c.writer.Enqueue(c.name, e); err != nil {
			c.logger.WithError(err).WithField("cache", c.name).Warn("Dropped cache persistence write")
		}
	}
}

// Sweep removes expired and structurally invalid entries and returns how
// many were dropped.
func (c *Cache) Sweep() int {
	now := time.Now()
	removed := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.Sub(e.StoredAt) > c.ttl || isZeroValue(e.Value) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// isZeroValue flags entries that decode to nothing useful; they come from
// interrupted writes or older format revisions.
func isZeroValue(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "{}", "[]", "0", `""`:
		return true
	}
	return false
}
