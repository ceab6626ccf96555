package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrWriterFull   = errors.New("cache writer queue is full")
	ErrWriterClosed = errors.New("cache writer is closed")
)

const writerQueueSize = 256

type pendingWrite struct {
	cache string
	entry Entry
}

// Writer batches cache writes and flushes them to the store after a
// debounce window, with bounded retries per flush.
type Writer struct {
	store      Store
	debounce   time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *logrus.Logger

	incoming chan pendingWrite
	done     chan struct{}
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWriter creates a debounced persistence writer for the given store.
func NewWriter(store Store, debounce time.Duration, maxRetries int, retryDelay time.Duration, logger *logrus.Logger) *Writer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Writer{
		store:      store,
		debounce:   debounce,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
		incoming:   make(chan pendingWrite, writerQueueSize),
		done:       make(chan struct{}),
	}
}

// Start begins the background flush loop.
func (w *Writer) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Enqueue adds an entry to the pending batch. Non-blocking so a slow disk
// can never stall a request path.
func (w *Writer) Enqueue(cache string, e Entry) error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrWriterClosed
	}
	w.mu.RUnlock()

	select {
	case w.incoming <- pendingWrite{cache: cache, entry: e}:
		return nil
	default:
		return ErrWriterFull
	}
}

// Close flushes whatever is pending and stops the loop.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	return nil
}

func (w *Writer) loop() {
	defer w.wg.Done()

	pending := make(map[string]map[string]Entry)
	timer := time.NewTicker(w.debounce)
	defer timer.Stop()

	add := func(p pendingWrite) {
		if pending[p.cache] == nil {
			pending[p.cache] = make(map[string]Entry)
		}
		pending[p.cache][p.entry.Key] = p.entry
	}

	for {
		select {
		case p := <-w.incoming:
			add(p)
		case <-timer.C:
			w.flush(pending)
			pending = make(map[string]map[string]Entry)
		case <-w.done:
			// Drain anything queued before the final flush.
			for {
				select {
				case p := <-w.incoming:
					add(p)
					continue
				default:
				}
				break
			}
			w.flush(pending)
			return
		}
	}
}

// flush writes each cache's batch with bounded retries.
func (w *Writer) flush(pending map[string]map[string]Entry) {
	for cacheName, byKey := range pending {
		if len(byKey) == 0 {
			continue
		}
		entries := make([]Entry, 0, len(byKey))
		for _, e := range byKey {
			entries = append(entries, e)
		}
		if err := w.flushBatch(cacheName, entries); err != nil {
			w.logger.WithError(err).WithField("cache", cacheName).Error("Failed to persist cache batch")
		}
	}
}

func (w *Writer) flushBatch(cacheName string, entries []Entry) error {
	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Infof("Retrying cache flush, attempt %d of %d", attempt, w.maxRetries)
			time.Sleep(w.retryDelay)
		}

		if err = w.store.SaveEntries(cacheName, entries); err == nil {
			w.logger.WithFields(logrus.Fields{"cache": cacheName, "entries": len(entries)}).Debug("Persisted cache batch")
			return nil
		}
	}
	return fmt.Errorf("failed to persist batch after %d attempts: %w", w.maxRetries, err)
}
