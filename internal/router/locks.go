package router

import (
	"sync"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
)

type entryLock struct {
	sync.Mutex
	refs int
}

// lockTable serializes writers per selector. Writers to the router record
// take the router lock exclusively; entry writers share it.
type lockTable struct {
	router  sync.RWMutex
	mu      sync.Mutex
	entries map[seal.Selector]*entryLock
}

func newLockTable() *lockTable {
	return &lockTable{entries: make(map[seal.Selector]*entryLock)}
}

func (l *lockTable) lockRouter() func() {
	l.router.Lock()
	return l.router.Unlock
}

// lockEntry always acquires the router lock before the entry lock.
func (l *lockTable) lockEntry(selector seal.Selector) func() {
	l.router.RLock()

	l.mu.Lock()
	el, ok := l.entries[selector]
	if !ok {
		el = &entryLock{}
		l.entries[selector] = el
	}
	el.refs++
	l.mu.Unlock()

	el.Lock()
	return func() {
		el.Unlock()

		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.entries, selector)
		}
		l.mu.Unlock()

		l.router.RUnlock()
	}
}
