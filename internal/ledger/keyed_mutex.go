package ledger

import (
	"context"
	"sync"
)

// keyedMutex hands out one mutex per key and drops it once nobody holds or waits for it
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

// refMutex is a one-slot channel so waiters can give up when their context ends
type refMutex struct {
	slot chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock acquires the key's mutex and returns its release func.
// It gives up with ctx.Err() if ctx ends first.
func (k *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{slot: make(chan struct{}, 1)}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	select {
	case m.slot <- struct{}{}:
		return func() {
			<-m.slot
			k.release(key, m)
		}, nil
	case <-ctx.Done():
		k.release(key, m)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) release(key string, m *refMutex) {
	k.mu.Lock()
	m.refs--
	if m.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}
