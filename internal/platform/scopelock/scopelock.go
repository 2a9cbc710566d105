// Package scopelock serializes work per named scope, such as all template
// reordering inside one suite.
package scopelock

import (
	"context"
	"sync"
)

// Locker hands out exclusive access to a scope until unlock is called.
type Locker interface {
	Lock(ctx context.Context, scope string) (unlock func(), err error)
}

// Local is an in-process Locker. Entries are dropped once no holder or
// waiter references them.
type Local struct {
	mu     sync.Mutex
	scopes map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{scopes: map[string]*entry{}}
}

func (l *Local) Lock(ctx context.Context, scope string) (func(), error) {
	l.mu.Lock()
	e, ok := l.scopes[scope]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.scopes[scope] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(scope, e)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(scope, e)
		})
	}, nil
}

func (l *Local) release(scope string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.scopes, scope)
	}
}

// Noop grants every lock immediately.
type Noop struct{}

func (Noop) Lock(context.Context, string) (func(), error) { return func() {}, nil }
