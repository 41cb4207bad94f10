// FILE: lixenwraith/confz/validate.go
package confz

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// registeredClass is the type-erased view of a Class used by ClassRegistry
type registeredClass interface {
	Name() string
	hasStaticSources() bool
	listenerList() []changeListener
	construct() error
}

// ClassRegistry records configuration classes in definition order so that they
// can be validated together.
type ClassRegistry struct {
	mutex   sync.RWMutex
	classes []registeredClass
}

// DefaultRegistry holds every class created with Define.
var DefaultRegistry = NewClassRegistry()

// NewClassRegistry creates an empty registry, see DefineIn.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{}
}

func (r *ClassRegistry) add(c registeredClass) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.classes = append(r.classes, c)
}

// Names returns the names of the registered classes in definition order.
func (r *ClassRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.classes))
	for _, c := range r.classes {
		names = append(names, c.Name())
	}
	return names
}

// ValidateAll constructs every registered class that has static sources, so
// that configuration errors surface at startup rather than on first access.
// With includeListeners, the listeners of those classes are computed as well:
// synchronous listeners first, then context-aware ones with ctx.
// It stops at the first error.
func (r *ClassRegistry) ValidateAll(ctx context.Context, includeListeners bool) error {
	r.mutex.RLock()
	classes := slices.Clone(r.classes)
	r.mutex.RUnlock()

	var syncListeners, ctxListeners []changeListener
	seen := make(map[changeListener]bool)

	var static []registeredClass
	for _, c := range classes {
		if !c.hasStaticSources() {
			continue
		}
		static = append(static, c)

		if !includeListeners {
			continue
		}
		for _, l := range c.listenerList() {
			if seen[l] {
				continue
			}
			seen[l] = true
			if l.usesContext() {
				ctxListeners = append(ctxListeners, l)
			} else {
				syncListeners = append(syncListeners, l)
			}
		}
	}

	for _, c := range static {
		if err := c.construct(); err != nil {
			return err
		}
	}

	for _, l := range slices.Concat(syncListeners, ctxListeners) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.compute(ctx); err != nil {
			return fmt.Errorf("config listener: %w", err)
		}
	}

	logger().Debug("config classes validated",
		slog.Int("classes", len(static)),
		slog.Int("listeners", len(syncListeners)+len(ctxListeners)))
	return nil
}

// ValidateAll validates the classes of DefaultRegistry, see ClassRegistry.ValidateAll.
func ValidateAll(ctx context.Context, includeListeners bool) error {
	return DefaultRegistry.ValidateAll(ctx, includeListeners)
}
