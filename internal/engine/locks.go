package engine

import "sync"

// keyedLocks serializes handling per session id. Webhook delivery can
// duplicate or reorder events for the same user, so two Handle calls for
// one id must never run concurrently; different ids proceed in parallel.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: make(map[string]*lockEntry)}
}

// lock acquires the per-id lock and returns its release function. Entries
// are reference counted so the map does not grow with every user seen.
func (k *keyedLocks) lock(id string) func() {
	k.mu.Lock()
	e, ok := k.entries[id]
	if !ok {
		e = &lockEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}
