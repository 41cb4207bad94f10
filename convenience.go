// FILE: lixenwraith/confz/convenience.go
package confz

import (
	"fmt"
	"io"
)

// Quick loads the configuration into target, a pointer to a struct holding
// the defaults, with the standard precedence (highest to lowest):
//  1. Command-line options (--server.port 9090)
//  2. Environment variables (MYAPP_SERVER__PORT=9090)
//  3. Configuration file, skipped if missing or empty
//  4. Values already in target
//
// Environment variables are only read when envPrefix is set.
func Quick(target any, envPrefix, configFile string) error {
	b := NewBuilder().WithFile(configFile)
	if envPrefix != "" {
		b = b.WithEnvPrefix(envPrefix)
	}
	return b.WithCommandLine("").BuildAndScan(target)
}

// MustQuick is like Quick but panics on error
func MustQuick(target any, envPrefix, configFile string) {
	if err := Quick(target, envPrefix, configFile); err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
}

// Dump writes values to w in the given format.
func Dump(w io.Writer, values map[string]any, format Format) error {
	data, err := encodeValues(values, format)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
