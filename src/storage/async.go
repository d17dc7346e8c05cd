package storage

import (
	"errors"
	"sync"

	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"
)

// ErrQueueFull is returned by SaveAuditEntry when the writer is behind.
var ErrQueueFull = errors.New("audit queue full")

// -----------------------------------------------------------------------------

// AsyncAuditStore queues entries and writes them on one background
// goroutine, so request handlers never wait on the database. Reads and
// cleanup go straight to the wrapped store.
type AsyncAuditStore struct {
	inner  interfaces.IAuditStore
	logger *logger.Logger
	queue  chan models.MAuditEntry
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// -----------------------------------------------------------------------------

func NewAsyncAuditStore(inner interfaces.IAuditStore, log *logger.Logger, size int) *AsyncAuditStore {
	if size <= 0 {
		size = 1024
	}
	a := &AsyncAuditStore{
		inner:  inner,
		logger: log,
		queue:  make(chan models.MAuditEntry, size),
	}
	a.wg.Add(1)
	go a.writeLoop()
	return a
}

func (a *AsyncAuditStore) writeLoop() {
	defer a.wg.Done()
	for entry := range a.queue {
		if err := a.inner.SaveAuditEntry(entry); err != nil {
			a.logger.Error("Failed to write audit entry: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

// Initialize is a no-op: the wrapped store is initialized before wrapping.
func (a *AsyncAuditStore) Initialize() error {
	return nil
}

func (a *AsyncAuditStore) SaveAuditEntry(entry models.MAuditEntry) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errors.New("audit store closed")
	}
	select {
	case a.queue <- entry:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *AsyncAuditStore) RecentEntries(limit int) ([]models.MAuditEntry, error) {
	return a.inner.RecentEntries(limit)
}

func (a *AsyncAuditStore) CleanupOldData() error {
	return a.inner.CleanupOldData()
}

// -----------------------------------------------------------------------------

// Close drains the queue, then closes the wrapped store.
func (a *AsyncAuditStore) Close() error {
	var err error
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()

		a.wg.Wait()
		err = a.inner.Close()
	})
	return err
}
