// Package pathlock serializes filesystem work per directory.
//
// The duplicate check plus move into a category folder and the archival
// rewrite of a directory's bundle both assume nothing else mutates that
// directory concurrently. A Table hands out one mutex per cleaned absolute
// path so the mover and the sweeper exclude each other on the same directory
// while leaving unrelated directories free.
package pathlock

import (
	"path/filepath"
	"sync"
)

// Table maps directory paths to mutexes. The zero value is not usable; call
// NewTable.
type Table struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTable returns an empty lock table.
func NewTable() *Table {
	return &Table{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for dir and returns the matching unlock function.
func (t *Table) Lock(dir string) func() {
	key := filepath.Clean(dir)

	t.mu.Lock()
	lock, ok := t.locks[key]
	if !ok {
		lock = new(sync.Mutex)
		t.locks[key] = lock
	}
	t.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
