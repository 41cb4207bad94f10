// FILE: lixenwraith/confz/type.go
package confz

import (
	"fmt"
	"reflect"
	"strconv"
)

// Values is a raw, not yet validated configuration mapping as produced by Load.
type Values map[string]any

// Get returns the value at a dot-separated path. An empty path returns the whole map.
func (v Values) Get(path string) (any, bool) {
	return navigateToPath(v, path)
}

// Has reports whether a value exists at path.
func (v Values) Has(path string) bool {
	_, found := v.Get(path)
	return found
}

// Flatten returns the values keyed by dot-separated paths.
func (v Values) Flatten() map[string]any {
	return Flatten(v, ".")
}

// Decode decodes the values into target using the default tag name.
func (v Values) Decode(target any) error {
	return Decode(v, target, "")
}

// String retrieves a string value at path.
// Attempts conversion from common types if the stored value isn't already a string.
func (v Values) String(path string) (string, error) {
	val, found := v.Get(path)
	if !found {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if val == nil {
		return "", nil
	}

	switch s := val.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	case []byte:
		return string(s), nil
	case bool:
		return strconv.FormatBool(s), nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
	}
}

// Int64 retrieves an int64 value at path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (v Values) Int64(path string) (int64, error) {
	val, found := v.Get(path)
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to int64", path)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(1<<63-1) {
			return 0, fmt.Errorf("cannot convert unsigned integer %d to int64 for path %s: overflow", u, path)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	case reflect.String:
		s := rv.String()
		i, err := strconv.ParseInt(s, 0, 64)
		if err == nil {
			return i, nil
		}
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", s, path, err)
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for path %s", val, path)
}

// Bool retrieves a boolean value at path.
// Numbers convert as 0=false, non-zero=true.
func (v Values) Bool(path string) (bool, error) {
	val, found := v.Get(path)
	if !found {
		return false, fmt.Errorf("path not found: %s", path)
	}
	if val == nil {
		return false, fmt.Errorf("value for path %s is nil, cannot convert to bool", path)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		b, err := strconv.ParseBool(rv.String())
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", rv.String(), path, err)
		}
		return b, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for path %s", val, path)
}

// Float64 retrieves a float64 value at path.
func (v Values) Float64(path string) (float64, error) {
	val, found := v.Get(path)
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to float64", path)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(rv.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", rv.String(), path, err)
		}
		return f, nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to float64 for path %s", val, path)
}
