// FILE: lixenwraith/confz/config.go
package confz

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
)

// Class is a configuration class: the schema T together with optional static
// sources, a lazily created singleton and the listeners depending on it.
//
// A Class with static sources (WithSources or inside ChangeSources) returns the
// same *T from every Get until its sources change. All methods are safe for
// concurrent use.
type Class[T any] struct {
	name string

	mu        sync.Mutex // Protects sources, static, instance and listeners
	sources   []Source
	static    bool
	instance  *T
	listeners []changeListener

	optMu      sync.RWMutex // Protects the options below
	tagName    string
	defaults   *T
	validators []func(*T) error
}

// Define creates a configuration class for T registered in DefaultRegistry.
// An empty name defaults to the name of T.
func Define[T any](name string) *Class[T] {
	return DefineIn[T](DefaultRegistry, name)
}

// DefineIn creates a configuration class for T registered in r.
func DefineIn[T any](r *ClassRegistry, name string) *Class[T] {
	if name == "" {
		name = reflect.TypeFor[T]().String()
	}
	c := &Class[T]{
		name:    name,
		tagName: DefaultTagName,
	}
	if r != nil {
		r.add(c)
	}
	return c
}

// WithSources sets the static sources, enabling the singleton.
// Calling it with no sources still enables the singleton over an empty source list.
// Any existing singleton is discarded.
func (c *Class[T]) WithSources(sources ...Source) *Class[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sources = slices.Clone(sources)
	c.static = true
	c.instance = nil
	return c
}

// WithDefaults sets the values of fields missing from the merged configuration.
func (c *Class[T]) WithDefaults(defaults T) *Class[T] {
	c.optMu.Lock()
	defer c.optMu.Unlock()

	c.defaults = &defaults
	return c
}

// WithTagName sets the struct tag naming configuration keys (default "config").
func (c *Class[T]) WithTagName(tagName string) *Class[T] {
	c.optMu.Lock()
	defer c.optMu.Unlock()

	if tagName == "" {
		tagName = DefaultTagName
	}
	c.tagName = tagName
	return c
}

// WithValidator adds a validation function run after struct tag validation.
func (c *Class[T]) WithValidator(fn func(*T) error) *Class[T] {
	c.optMu.Lock()
	defer c.optMu.Unlock()

	c.validators = append(c.validators, fn)
	return c
}

// Name returns the class name.
func (c *Class[T]) Name() string {
	return c.name
}

// Sources returns a copy of the current static sources and whether they are defined.
func (c *Class[T]) Sources() ([]Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.sources), c.static
}

// Construct creates or returns an instance of T.
//
// With explicit sources a fresh instance is loaded from overrides and sources,
// bypassing the singleton. Otherwise, if static sources are defined, the
// singleton is returned, created on first use; overrides are then rejected
// with ErrStaticSources. Without static sources the overrides alone are validated.
func (c *Class[T]) Construct(overrides map[string]any, sources ...Source) (*T, error) {
	if len(sources) > 0 {
		return c.load(overrides, sources)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.static {
		return c.Validate(overrides)
	}

	if len(overrides) > 0 {
		return nil, fmt.Errorf("config %s: %w", c.name, ErrStaticSources)
	}

	if c.instance != nil {
		return c.instance, nil
	}

	instance, err := c.load(nil, c.sources)
	if err != nil {
		return nil, err
	}
	c.instance = instance
	logger().Debug("config singleton created", slog.String("class", c.name), slog.Int("sources", len(c.sources)))

	return instance, nil
}

// Get returns the singleton, or a validated zero configuration without static sources.
func (c *Class[T]) Get() (*T, error) {
	return c.Construct(nil)
}

// MustGet is like Get but panics on error.
func (c *Class[T]) MustGet() *T {
	instance, err := c.Get()
	if err != nil {
		panic(err)
	}
	return instance
}

// Validate decodes raw into a new T over the class defaults and validates it.
func (c *Class[T]) Validate(raw map[string]any) (*T, error) {
	c.optMu.RLock()
	tagName, defaults, validators := c.tagName, c.defaults, slices.Clone(c.validators)
	c.optMu.RUnlock()

	return validateInto(raw, defaults, tagName, c.name, validators)
}

func (c *Class[T]) load(overrides map[string]any, sources []Source) (*T, error) {
	raw, err := Load(overrides, sources...)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", c.name, err)
	}
	return c.Validate(raw)
}

func (c *Class[T]) addListener(l changeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, l)
}

func (c *Class[T]) hasStaticSources() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.static
}

func (c *Class[T]) listenerList() []changeListener {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.listeners)
}

func (c *Class[T]) construct() error {
	_, err := c.Get()
	return err
}
