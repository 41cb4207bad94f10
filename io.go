// FILE: lixenwraith/confz/io.go
package confz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// FileLoader loads a FileSource.
type FileLoader struct{}

// Populate implements Loader.
func (FileLoader) Populate(config map[string]any, src Source) error {
	s, err := sourceAs[FileSource](src)
	if err != nil {
		return err
	}

	data, err := loadFileSource(s)
	if err != nil {
		var fileErr *FileError
		if s.Optional && errors.As(err, &fileErr) && fileErr.Unresolved() {
			logger().Debug("optional config file skipped", slog.String("reason", fileErr.Error()))
			return nil
		}
		return err
	}

	return MergeRecursive(config, data)
}

// loadFileSource reads and parses the data of a FileSource
func loadFileSource(s FileSource) (map[string]any, error) {
	if s.Data != nil {
		if s.Format == "" {
			return nil, &FileError{Reason: "format must be set when data is given"}
		}
		content, err := decodeText(s.Data, s.Encoding, "")
		if err != nil {
			return nil, err
		}
		return parseContent(content, s.Format, "")
	}

	path, err := resolveFilePath(s)
	if err != nil {
		return nil, err
	}

	// Format is checked before touching the file system
	format := s.Format
	if format == "" {
		if format, err = detectFileFormat(path); err != nil {
			return nil, err
		}
	}

	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	content, err := decodeText(raw, s.Encoding, path)
	if err != nil {
		return nil, err
	}

	return parseContent(content, format, path)
}

// readFile reads a regular file. Every failure is unresolved.
func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newUnresolvedError(path, "file not found", err)
		}
		return nil, newUnresolvedError(path, "cannot access file", err)
	}
	if info.IsDir() {
		return nil, newUnresolvedError(path, "cannot read file", ErrPathIsDirectory)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUnresolvedError(path, "cannot read file", err)
	}
	return data, nil
}

// decodeText converts content in the named encoding to UTF-8
func decodeText(data []byte, encoding, path string) ([]byte, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return data, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, &FileError{Path: path, Reason: fmt.Sprintf("unknown encoding '%s'", encoding), Err: err}
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, &FileError{Path: path, Reason: fmt.Sprintf("cannot decode content as '%s'", encoding), Err: err}
	}
	return decoded, nil
}

// parseContent parses JSON, YAML or TOML content into a nested map.
// The top level of the document must be a mapping.
func parseContent(data []byte, format Format, path string) (map[string]any, error) {
	var parsed any

	switch format {
	case FormatTOML:
		m := make(map[string]any)
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, &FileError{Path: path, Reason: "failed to parse TOML", Err: err}
		}
		parsed = m

	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&parsed); err != nil {
			return nil, &FileError{Path: path, Reason: "failed to parse JSON", Err: err}
		}
		if decoder.More() {
			return nil, &FileError{Path: path, Reason: "failed to parse JSON: trailing data after document"}
		}

	case FormatYAML:
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, &FileError{Path: path, Reason: "failed to parse YAML", Err: err}
		}
		// An empty document holds no values
		if parsed == nil {
			return make(map[string]any), nil
		}

	default:
		return nil, &FileError{Path: path, Reason: fmt.Sprintf("unsupported format '%s'", format)}
	}

	result, ok := normalizeValue(parsed).(map[string]any)
	if !ok {
		return nil, &FileError{Path: path, Reason: fmt.Sprintf("top level of %s document must be a mapping, got %T", format, parsed)}
	}
	return result, nil
}

// encodeValues marshals a nested map in the given format
func encodeValues(values map[string]any, format Format) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatTOML:
		encoder := toml.NewEncoder(&buf)
		if err := encoder.Encode(values); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}

	case FormatJSON:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(values); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}

	case FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(values); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}

	return buf.Bytes(), nil
}

// Save writes values to path atomically. An empty format is inferred from the extension.
func Save(path string, values map[string]any, format Format) error {
	if format == "" {
		var err error
		if format, err = detectFileFormat(path); err != nil {
			return err
		}
	}

	data, err := encodeValues(values, format)
	if err != nil {
		return err
	}

	return atomicWriteFile(path, data)
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
