// FILE: lixenwraith/confz/discovery.go
package confz

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// resolveFilePath determines the configuration file path of a FileSource.
// All failures are unresolved FileErrors so that optional sources can skip them.
func resolveFilePath(s FileSource) (string, error) {
	var path string

	switch {
	case s.File != "":
		path = s.File

	case s.FileFromEnv != "":
		value, exists := os.LookupEnv(s.FileFromEnv)
		if !exists {
			return "", newUnresolvedError("", fmt.Sprintf("environment variable '%s' is not set", s.FileFromEnv), nil)
		}
		path = value

	case s.FileFromCL != "":
		idx := slices.Index(os.Args, s.FileFromCL)
		if idx < 0 {
			return "", newUnresolvedError("", fmt.Sprintf("command-line argument '%s' not found", s.FileFromCL), nil)
		}
		if idx+1 >= len(os.Args) {
			return "", newUnresolvedError("", fmt.Sprintf("command-line argument '%s' is not set", s.FileFromCL), nil)
		}
		path = os.Args[idx+1]

	case s.FileFromCLIndex > 0:
		if s.FileFromCLIndex >= len(os.Args) {
			return "", newUnresolvedError("", fmt.Sprintf("command-line argument number %d is not set", s.FileFromCLIndex), nil)
		}
		path = os.Args[s.FileFromCLIndex]

	default:
		return "", newUnresolvedError("", "no file source set", nil)
	}

	if s.Folder != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Folder, path)
	}

	return path, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", &FileError{
			Path:   path,
			Reason: fmt.Sprintf("file extension '%s' is not known, supported are: %s", ext, strings.Join(knownExtensions, ", ")),
		}
	}
}

var knownExtensions = []string{".json", ".yaml", ".yml", ".toml"}
