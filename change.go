// FILE: lixenwraith/confz/change.go
package confz

import (
	"log/slog"
	"slices"
	"sync"
)

// Scope is a temporary change of the sources of a class, created by
// Class.ChangeSources. Restore ends it.
type Scope struct {
	class   string
	restore func()
	once    sync.Once
}

// Restore reinstates the sources and the singleton that were active before the
// scope and restores memoized listener values. Calling it again has no effect.
// Nested scopes must be restored in reverse order of creation.
func (s *Scope) Restore() {
	s.once.Do(s.restore)
}

// Class returns the name of the class whose sources the scope changed.
func (s *Scope) Class() string {
	return s.class
}

// ChangeSources installs sources as the static sources of the class until the
// returned scope is restored. The singleton is cleared so that the next Get
// loads from the new sources, and listeners depending on the class forget
// their memoized values.
//
//	scope := cfg.ChangeSources(confz.DataSource{Data: testData})
//	defer scope.Restore()
func (c *Class[T]) ChangeSources(sources ...Source) *Scope {
	c.mu.Lock()
	prevSources, prevStatic, prevInstance := c.sources, c.static, c.instance
	c.sources = slices.Clone(sources)
	c.static = true
	c.instance = nil
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	scope := &Scope{class: c.name}
	scope.restore = func() {
		c.mu.Lock()
		c.sources, c.static, c.instance = prevSources, prevStatic, prevInstance
		// Includes listeners registered while the scope was active
		current := slices.Clone(c.listeners)
		c.mu.Unlock()

		for _, l := range current {
			l.changeExit(scope)
		}
		logger().Debug("config sources restored", slog.String("class", c.name))
	}

	for _, l := range listeners {
		l.changeEnter(scope)
	}
	logger().Debug("config sources changed", slog.String("class", c.name), slog.Int("sources", len(sources)))

	return scope
}

// RunWithSources calls fn with sources installed as in ChangeSources.
// The previous sources are restored when fn returns or panics.
func (c *Class[T]) RunWithSources(fn func() error, sources ...Source) error {
	scope := c.ChangeSources(sources...)
	defer scope.Restore()

	return fn()
}
