package lock

import "sync"

// Keyed provides per-key mutual exclusion: operations on the same key are
// serialized while different keys proceed concurrently.
// Unused key mutexes are released so the map only holds keys in use.
type Keyed[K comparable] struct {
	mu    sync.Mutex // Guards the locks map itself.
	locks map[K]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyed creates a new Keyed locker.
func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{
		locks: make(map[K]*keyLock),
	}
}

// Lock acquires the mutex of the key, creating it on first access.
func (k *Keyed[K]) Lock(key K) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	// Acquire outside the manager lock to avoid contention between keys.
	l.mu.Lock()
}

// Unlock releases the mutex of the key.
func (k *Keyed[K]) Unlock(key K) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		return
	}

	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	l.mu.Unlock()
}

// Len returns the number of keys currently locked or waiting.
func (k *Keyed[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
