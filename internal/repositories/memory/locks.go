package memory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// lockManager hands out one mutex per account id. Locks are acquired in
// ascending id order with a bounded wait, mirroring the lock_timeout behavior
// of the postgres store.
type lockManager struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockManager() *lockManager {
	return &lockManager{locks: make(map[string]chan struct{})}
}

func (m *lockManager) lockFor(id string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[id] = l
	}
	return l
}

// acquire takes the locks for every id, sorted ascending, waiting at most
// timeout overall. On failure it releases everything it already holds and
// returns false. The returned release function is safe to call exactly once.
func (m *lockManager) acquire(ctx context.Context, ids []string, timeout time.Duration) (func(), bool) {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	held := make([]chan struct{}, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, id := range sorted {
		l := m.lockFor(id)
		select {
		case l <- struct{}{}:
			held = append(held, l)
		case <-deadline.C:
			release()
			return nil, false
		case <-ctx.Done():
			release()
			return nil, false
		}
	}
	return release, true
}
