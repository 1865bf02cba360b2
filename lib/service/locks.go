package service

import "sync"

// chargeLocks hands out one mutex per charge id. Entries are dropped once no
// goroutine holds or waits for them. The zero value is ready to use.
type chargeLocks struct {
	mu    sync.Mutex
	locks map[string]*chargeLock
}

type chargeLock struct {
	sync.Mutex
	refs int
}

func (l *chargeLocks) Lock(chargeID string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*chargeLock{}
	}
	lock, ok := l.locks[chargeID]
	if !ok {
		lock = &chargeLock{}
		l.locks[chargeID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, chargeID)
		}
		l.mu.Unlock()
	}
}

func (l *chargeLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
