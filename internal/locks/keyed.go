// Package locks provides a keyed mutual-exclusion primitive used to
// serialize operations that share a logical resource, such as all rating
// writes for one movie.
package locks

import "sync"

// Keyed hands out one mutex per key. Entries are reference counted and
// dropped once the last holder releases, so memory stays bounded by the
// number of in-flight operations.
type Keyed[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyed creates an empty keyed lock set.
func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{entries: make(map[K]*entry)}
}

// Lock acquires the mutex for key, blocking while another caller holds it,
// and returns the release function.
func (k *Keyed[K]) Lock(key K) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
