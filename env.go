// FILE: lixenwraith/confz/env.go
package confz

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// EnvLoader loads an EnvSource.
type EnvLoader struct{}

// Populate implements Loader.
func (EnvLoader) Populate(config map[string]any, src Source) error {
	s, err := sourceAs[EnvSource](src)
	if err != nil {
		return err
	}

	vars, err := environment(s)
	if err != nil {
		return err
	}

	allow := canonicalSet(s.Allow)
	deny := canonicalSet(s.Deny)
	remap := make(map[string]string, len(s.Remap))
	for from, to := range s.Remap {
		remap[canonicalEnvName(from)] = to
	}

	flat := make(map[string]any)
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		if !strings.HasPrefix(name, s.Prefix) {
			continue
		}
		key := canonicalEnvName(strings.TrimPrefix(name, s.Prefix))

		if !s.AllowAll && !allow[key] {
			continue
		}
		if deny[key] {
			continue
		}
		if target, exists := remap[key]; exists {
			key = target
		}

		flat[key] = vars[name]
	}

	nested, err := Nest(flat, separatorOrDefault(s.NestedSeparator))
	if err != nil {
		return err
	}
	return MergeRecursive(config, nested)
}

// canonicalEnvName lower-cases a variable name and replaces dashes with underscores
func canonicalEnvName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

func canonicalSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[canonicalEnvName(name)] = true
	}
	return set
}

// environment returns the process environment layered over the dotenv data of s
func environment(s EnvSource) (map[string]string, error) {
	vars, err := dotenvValues(s)
	if err != nil {
		return nil, err
	}

	for _, entry := range os.Environ() {
		name, value, _ := strings.Cut(entry, "=")
		// Windows keeps per-drive variables such as "=C:" with an empty name
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars, nil
}

// dotenvValues parses the dotenv data or file of s. A missing file yields no values.
func dotenvValues(s EnvSource) (map[string]string, error) {
	var reader io.Reader
	switch {
	case s.Data != nil:
		reader = bytes.NewReader(s.Data)
	case s.File != "":
		f, err := os.Open(s.File)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger().Debug("dotenv file not found", "path", s.File)
				return make(map[string]string), nil
			}
			return nil, newUnresolvedError(s.File, "cannot read dotenv file", err)
		}
		defer f.Close()
		reader = f
	default:
		return make(map[string]string), nil
	}

	vars, err := godotenv.Parse(reader)
	if err != nil {
		return nil, &FileError{Path: s.File, Reason: "failed to parse dotenv data", Err: err}
	}
	return vars, nil
}
