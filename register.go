// FILE: lixenwraith/confz/register.go
package confz

import (
	"fmt"
	"reflect"
	"sync"
)

// Loader populates a configuration map from one source.
type Loader interface {
	// Populate merges the data described by src into config.
	Populate(config map[string]any, src Source) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(config map[string]any, src Source) error

// Populate calls f(config, src).
func (f LoaderFunc) Populate(config map[string]any, src Source) error {
	return f(config, src)
}

// loaderRegistry maps the dynamic type of a source to its loader
type loaderRegistry struct {
	mutex   sync.RWMutex
	loaders map[reflect.Type]Loader
}

var loaders = &loaderRegistry{loaders: make(map[reflect.Type]Loader)}

func init() {
	RegisterLoader(FileSource{}, FileLoader{})
	RegisterLoader(EnvSource{}, EnvLoader{})
	RegisterLoader(CLArgSource{}, CLArgLoader{})
	RegisterLoader(DataSource{}, DataLoader{})
}

// RegisterLoader registers loader for the exact dynamic type of src, replacing
// any previous registration. src only serves as a type witness, a zero value is enough.
// A pointer type and its element type are distinct registrations.
func RegisterLoader(src Source, loader Loader) {
	loaders.mutex.Lock()
	defer loaders.mutex.Unlock()

	loaders.loaders[reflect.TypeOf(src)] = loader
}

// GetLoader returns the loader registered for the dynamic type of src.
func GetLoader(src Source) (Loader, error) {
	loaders.mutex.RLock()
	defer loaders.mutex.RUnlock()

	loader, exists := loaders.loaders[reflect.TypeOf(src)]
	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrLoaderNotRegistered, src)
	}
	return loader, nil
}

// sourceAs asserts the concrete source type expected by a built-in loader
func sourceAs[S any](src Source) (S, error) {
	s, ok := src.(S)
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: expected %T, got %T", ErrSourceMismatch, zero, src)
	}
	return s, nil
}
