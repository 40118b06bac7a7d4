package booking

import "sync"

// categoryLocks serializes room assignment per category inside this
// process.  The store transaction guards across processes.
type categoryLocks struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func (l *categoryLocks) lock(categoryID uint64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uint64]*sync.Mutex)
	}
	m, ok := l.locks[categoryID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[categoryID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
