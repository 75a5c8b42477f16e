package utils

import "sync"

/*
KeyedMutex serializes work per key while letting different keys proceed in
parallel.  Entries are reference counted and dropped once nobody holds or
waits for them, so the map only grows with the number of active keys.
*/
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: map[string]*keyedEntry{}}
}

// Lock blocks until key is free and returns the matching unlock.
func (keyed *KeyedMutex) Lock(key string) func() {
	keyed.mu.Lock()
	entry, ok := keyed.locks[key]

	if !ok {
		entry = &keyedEntry{}
		keyed.locks[key] = entry
	}

	entry.refs++
	keyed.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		keyed.mu.Lock()
		defer keyed.mu.Unlock()

		entry.refs--

		if entry.refs == 0 {
			delete(keyed.locks, key)
		}
	}
}

// Len reports how many keys are currently held or waited on.
func (keyed *KeyedMutex) Len() int {
	keyed.mu.Lock()
	defer keyed.mu.Unlock()

	return len(keyed.locks)
}
