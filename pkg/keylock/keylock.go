// Package keylock provides a mutex table keyed by string, so independent
// records can be written concurrently while writes to the same record
// serialize. Locks are created on first use and never removed; the table is
// bounded by the number of distinct keys seen in a process lifetime.
package keylock

import "sync"

// Table is a set of named mutexes. The zero value is not usable; call New.
type Table struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns an empty lock table.
func New() *Table {
	return &Table{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use, and returns the
// matching unlock function.
func (t *Table) Lock(key string) (unlock func()) {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
