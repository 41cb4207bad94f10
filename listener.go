// FILE: lixenwraith/confz/listener.go
package confz

import (
	"context"
	"sync"
)

// Dependent is implemented by every *Class. Listeners registered on a
// dependent are reset while its sources are changed.
type Dependent interface {
	Name() string
	addListener(l changeListener)
}

// changeListener is notified about scopes of the classes it depends on
type changeListener interface {
	changeEnter(scope *Scope)
	changeExit(scope *Scope)
	usesContext() bool
	compute(ctx context.Context) error
}

type memo[T any] struct {
	value T
	set   bool
}

// Listener is a lazily computed value derived from configuration, typically a
// client or connection built from a config class. The value is computed once
// and memoized until the sources of a class it depends on change. Inside a
// scope it is computed anew, and the previous value comes back when the scope
// is restored. Errors are not memoized.
type Listener[T any] struct {
	mu      sync.Mutex
	fn      func(ctx context.Context) (T, error)
	withCtx bool
	current memo[T]
	backups map[*Scope]memo[T]
}

// DependsOn creates a listener computing fn, reset whenever the sources of
// any of classes change.
func DependsOn[T any](fn func() (T, error), classes ...Dependent) *Listener[T] {
	return newListener(func(context.Context) (T, error) { return fn() }, false, classes)
}

// DependsOnContext is like DependsOn for computations taking a context,
// such as dialing a service. The context passed to Listener.GetContext is forwarded to fn.
func DependsOnContext[T any](fn func(ctx context.Context) (T, error), classes ...Dependent) *Listener[T] {
	return newListener(fn, true, classes)
}

func newListener[T any](fn func(ctx context.Context) (T, error), withCtx bool, classes []Dependent) *Listener[T] {
	l := &Listener[T]{
		fn:      fn,
		withCtx: withCtx,
		backups: make(map[*Scope]memo[T]),
	}
	for _, c := range classes {
		c.addListener(l)
	}
	return l
}

// Get returns the memoized value, computing it on first use.
func (l *Listener[T]) Get() (T, error) {
	return l.GetContext(context.Background())
}

// GetContext is like Get, passing ctx to a context-aware computation.
// A scope change waits for a running computation to finish.
func (l *Listener[T]) GetContext(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current.set {
		return l.current.value, nil
	}

	value, err := l.fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.current = memo[T]{value: value, set: true}
	return value, nil
}

// MustGet is like Get but panics on error.
func (l *Listener[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(err)
	}
	return value
}

func (l *Listener[T]) changeEnter(scope *Scope) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.backups[scope] = l.current
	l.current = memo[T]{}
}

func (l *Listener[T]) changeExit(scope *Scope) {
	l.mu.Lock()
	defer l.mu.Unlock()

	backup, exists := l.backups[scope]
	if !exists {
		// Registered inside the scope, so anything memoized came from its sources
		l.current = memo[T]{}
		return
	}
	l.current = backup
	delete(l.backups, scope)
}

func (l *Listener[T]) usesContext() bool {
	return l.withCtx
}

func (l *Listener[T]) compute(ctx context.Context) error {
	_, err := l.GetContext(ctx)
	return err
}
