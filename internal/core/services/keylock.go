package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// keyedMutex serialises work per cursor key. Entries are reference counted
// and removed once no caller holds or awaits them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[domain.CursorKey]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[domain.CursorKey]*keyLock)}
}

// Lock blocks until key is held or ctx is done.
func (m *keyedMutex) Lock(ctx context.Context, key domain.CursorKey) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			m.release(key, l)
		}, nil
	case <-ctx.Done():
		m.release(key, l)
		return nil, ctx.Err()
	}
}

func (m *keyedMutex) release(key domain.CursorKey, l *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

func (m *keyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
