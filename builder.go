// FILE: lixenwraith/confz/builder.go
package confz

import (
	"fmt"
)

// EnvNestedSeparator splits environment names set up by Builder.WithEnvPrefix
// and Quick into nested keys, e.g. APP_SERVER__PORT becomes server.port.
const EnvNestedSeparator = "__"

// ValidatorFunc validates the merged values at the end of Builder.Load.
type ValidatorFunc func(values Values) error

// Builder provides a fluent interface for loading configuration without
// defining a Class. Sources are applied in the order they are added, later
// ones taking precedence.
type Builder struct {
	overrides  map[string]any
	sources    []Source
	tagName    string
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		overrides: make(map[string]any),
		tagName:   DefaultTagName,
	}
}

// WithOverrides merges values below all sources.
func (b *Builder) WithOverrides(values map[string]any) *Builder {
	if b.err == nil {
		b.err = MergeRecursive(b.overrides, values)
	}
	return b
}

// WithOverride sets a single dot-separated path below all sources.
func (b *Builder) WithOverride(path string, value any) *Builder {
	if b.err != nil {
		return b
	}
	nested, err := Nest(map[string]any{path: value}, ".")
	if err != nil {
		b.err = err
		return b
	}
	b.err = MergeRecursive(b.overrides, nested)
	return b
}

// WithSources appends sources.
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.sources = append(b.sources, sources...)
	return b
}

// WithFile appends an optional configuration file, the format is inferred from the extension.
func (b *Builder) WithFile(path string) *Builder {
	if path == "" {
		return b
	}
	return b.WithSources(FileSource{File: path, Optional: true})
}

// WithRequiredFile appends a configuration file that must exist.
func (b *Builder) WithRequiredFile(path string) *Builder {
	return b.WithSources(FileSource{File: path})
}

// WithEnvPrefix appends all environment variables starting with prefix,
// nested on EnvNestedSeparator.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	return b.WithSources(EnvSource{AllowAll: true, Prefix: prefix, NestedSeparator: EnvNestedSeparator})
}

// WithCommandLine appends the "--name value" options of os.Args starting with prefix.
func (b *Builder) WithCommandLine(prefix string) *Builder {
	return b.WithSources(CLArgSource{Prefix: prefix})
}

// WithTagName sets the struct tag used by BuildAndScan
func (b *Builder) WithTagName(tagName string) *Builder {
	if tagName != "" {
		b.tagName = tagName
	}
	return b
}

// WithValidator adds a validation function that runs at the end of Load.
// Multiple validators are executed in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Load merges the overrides and all sources, then runs the validators.
func (b *Builder) Load() (Values, error) {
	if b.err != nil {
		return nil, b.err
	}

	values, err := Load(b.overrides, b.sources...)
	if err != nil {
		return nil, err
	}

	for _, validate := range b.validators {
		if err := validate(values); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return values, nil
}

// MustLoad is like Load but panics on error
func (b *Builder) MustLoad() Values {
	values, err := b.Load()
	if err != nil {
		panic(fmt.Sprintf("config load failed: %v", err))
	}
	return values
}

// BuildAndScan loads the configuration and decodes it into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) error {
	values, err := b.Load()
	if err != nil {
		return err
	}

	return Decode(values, target, b.tagName)
}
