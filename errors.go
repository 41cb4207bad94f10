// FILE: lixenwraith/confz/errors.go
package confz

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by loading and construction.
var (
	// ErrFile indicates a configuration file could not be located, read or parsed.
	ErrFile = errors.New("config file error")

	// ErrPathIsDirectory is returned when a resolved file path points to a directory.
	ErrPathIsDirectory = errors.New("path is a directory, not a file")

	// ErrContradiction indicates a key is used both as a value and as a nested mapping.
	ErrContradiction = errors.New("config values contradict each other")

	// ErrLoaderNotRegistered indicates no loader is registered for a source type.
	ErrLoaderNotRegistered = errors.New("no loader registered for source type")

	// ErrSourceMismatch indicates a loader received a source of a type it cannot handle.
	ErrSourceMismatch = errors.New("source type does not match loader")

	// ErrStaticSources indicates overrides were passed to a class with static sources.
	ErrStaticSources = errors.New("static sources are defined, overrides are not supported")

	// ErrValidation indicates the merged configuration does not satisfy its schema.
	ErrValidation = errors.New("config validation failed")
)

// FileError describes a failure to resolve, read or parse a configuration file.
type FileError struct {
	// Path is the resolved file path, empty if resolution failed before a path existed.
	Path string
	// Reason describes what went wrong.
	Reason string
	// Err is the underlying error, if any.
	Err error

	unresolved bool
}

// newUnresolvedError creates a FileError for a file that could not be located or opened.
// Optional file sources treat these as "no data".
func newUnresolvedError(path, reason string, err error) *FileError {
	return &FileError{Path: path, Reason: reason, Err: err, unresolved: true}
}

// Error implements the error interface.
func (e *FileError) Error() string {
	var b strings.Builder
	b.WriteString("config file")
	if e.Path != "" {
		fmt.Fprintf(&b, " '%s'", e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Is matches ErrFile.
func (e *FileError) Is(target error) bool {
	return target == ErrFile
}

// Unresolved reports whether the file could not be located or opened,
// as opposed to being found with invalid content.
func (e *FileError) Unresolved() bool {
	return e.unresolved
}

// ContradictionError is returned when a key is bound to a scalar in one place
// and used as a nested mapping in another.
type ContradictionError struct {
	// Key is the dotted path of the conflicting key.
	Key string
}

// Error implements the error interface.
func (e *ContradictionError) Error() string {
	return fmt.Sprintf("%s: key '%s' is both a value and a nested mapping", ErrContradiction, e.Key)
}

// Is matches ErrContradiction.
func (e *ContradictionError) Is(target error) bool {
	return target == ErrContradiction
}

// FieldError describes one field that failed decoding or validation.
type FieldError struct {
	// Path is the field namespace, empty when the decoder did not report one.
	Path string
	// Expected is the expected type or the failed rule.
	Expected string
	// Value is the offending value.
	Value any
	// Message is the human readable description.
	Message string
}

// String formats the field error.
func (f FieldError) String() string {
	if f.Path == "" {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

// ValidationError is returned when the merged mapping fails the schema.
type ValidationError struct {
	// Class is the configuration class name, empty for ad-hoc validation.
	Class string
	// Fields lists the individual failures.
	Fields []FieldError
	// Err is the underlying decoder or validator error.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	if e.Class != "" {
		fmt.Fprintf(&b, " for %s", e.Class)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, "; "))
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
