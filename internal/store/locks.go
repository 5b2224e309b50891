package store

import "sync"

// learnerLocks is a registry of per-learner mutexes. Mutating sequences for
// one learner must be serialized to protect the position invariants; other
// learners proceed in parallel.
type learnerLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newLearnerLocks() *learnerLocks {
	return &learnerLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *learnerLocks) lock(learnerID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[learnerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[learnerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
