package cache

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	saved   map[string][]Entry
	preload map[string][]Entry
	purged  []time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: make(map[string][]Entry), preload: make(map[string][]Entry)}
}

func (m *memoryStore) LoadEntries(cache string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preload[cache], nil
}

func (m *memoryStore) SaveEntries(cache string, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[cache] = append(m.saved[cache], entries...)
	return nil
}

func (m *memoryStore) PurgeEntries(cache string, olderThan time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged = append(m.purged, olderThan)
	return nil
}

func (m *memoryStore) savedCount(cache string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved[cache])
}

type payload struct {
	Value float64 `json:"value"`
}

func TestCacheSetGet(t *testing.T) {
	c := New("test", time.Hour, logrus.New())

	c.Set("k", payload{Value: 42})

	var got payload
	assert.True(t, c.Get("k", &got))
	assert.Equal(t, 42.0, got.Value)
	assert.False(t, c.Get("missing", &got))
}

func TestCacheLazyExpiry(t *testing.T) {
	c := New("test", 10*time.Millisecond, logrus.New())

	c.Set("k", payload{Value: 1})
	time.Sleep(25 * time.Millisecond)

	var got payload
	assert.False(t, c.Get("k", &got), "expired entry must not be returned")
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
}

func TestCacheSweepRemovesExpiredAndZeroEntries(t *testing.T) {
	c := New("test", time.Hour, logrus.New())

	c.entries["stale"] = Entry{Key: "stale", Value: json.RawMessage(`{"value":1}`), StoredAt: time.Now().Add(-2 * time.Hour)}
	c.entries["zero"] = Entry{Key: "zero", Value: json.RawMessage(`null`), StoredAt: time.Now()}
	c.entries["empty"] = Entry{Key: "empty", Value: json.RawMessage(`{}`), StoredAt: time.Now()}
	c.Set("fresh", payload{Value: 2})

	removed := c.Sweep()

	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, c.Len())
	var got payload
	assert.True(t, c.Get("fresh", &got))
}

func TestCacheLoadFromStore(t *testing.T) {
	store := newMemoryStore()
	store.preload["test"] = []Entry{
		{Key: "a", Value: json.RawMessage(`{"value":7}`), StoredAt: time.Now()},
		{Key: "b", Value: json.RawMessage(`null`), StoredAt: time.Now()},
	}
	c := New("test", time.Hour, logrus.New())

	require.NoError(t, c.Load(store))

	var got payload
	assert.True(t, c.Get("a", &got))
	assert.Equal(t, 7.0, got.Value)
	assert.False(t, c.Get("b", &got), "zero-value entry swept at startup")
	assert.Len(t, store.purged, 1, "startup must purge expired persisted rows")
}

func TestWriterDebouncedFlush(t *testing.T) {
	store := newMemoryStore()
	w := NewWriter(store, 20*time.Millisecond, 1, time.Millisecond, logrus.New())
	w.Start()

	c := New("test", time.Hour, logrus.New())
	c.AttachWriter(w)
	c.Set("k1", payload{Value: 1})
	c.Set("k2", payload{Value: 2})

	assert.Equal(t, 0, store.savedCount("test"), "writes are debounced, not immediate")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, store.savedCount("test"))

	require.NoError(t, w.Close())
}

func TestWriterFlushesOnClose(t *testing.T) {
	store := newMemoryStore()
	w := NewWriter(store, time.Hour, 1, time.Millisecond, logrus.New())
	w.Start()

	require.NoError(t, w.Enqueue("test", Entry{Key: "k", Value: json.RawMessage(`{"value":1}`), StoredAt: time.Now()}))
	require.NoError(t, w.Close())

	assert.Equal(t, 1, store.savedCount("test"))
	assert.ErrorIs(t, w.Enqueue("test", Entry{}), ErrWriterClosed)
}
