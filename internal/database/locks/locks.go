// Package locks provides per-key mutual exclusion for repositories that
// must serialize read-then-write sections against the same document.
package locks

import "sync"

// KeyedMutex hands out one mutex per key. Mutexes are retained for the
// lifetime of the process; the key space is bounded by the library size.
type KeyedMutex struct {
	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{mutexes: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.mutexes[key]
	if !ok {
		m = &sync.Mutex{}
		k.mutexes[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
