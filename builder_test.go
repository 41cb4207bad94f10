// FILE: lixenwraith/confz/builder_test.go
package confz

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builderConfig struct {
	Server struct {
		Host string `config:"host"`
		Port int    `config:"port"`
	} `config:"server"`
	Debug bool `config:"debug"`
}

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("Precedence", func(t *testing.T) {
		path := writeFile(t, tmpDir, "builder.toml", "[server]\nhost = \"file\"\nport = 7000\n")
		t.Setenv("CONFZ_B_SERVER__PORT", "8000")
		withArgs(t, "--debug", "true")

		var cfg builderConfig
		err := NewBuilder().
			WithOverride("server.host", "override").
			WithFile(path).
			WithEnvPrefix("CONFZ_B_").
			WithCommandLine("").
			BuildAndScan(&cfg)
		require.NoError(t, err)

		assert.Equal(t, "file", cfg.Server.Host)
		assert.Equal(t, 8000, cfg.Server.Port)
		assert.True(t, cfg.Debug)
	})

	t.Run("MissingOptionalFile", func(t *testing.T) {
		withArgs(t)

		values, err := NewBuilder().
			WithOverrides(map[string]any{"a": 1}).
			WithFile(filepath.Join(tmpDir, "missing.yaml")).
			Load()
		require.NoError(t, err)
		assert.Equal(t, Values{"a": 1}, values)
	})

	t.Run("MissingRequiredFile", func(t *testing.T) {
		_, err := NewBuilder().WithRequiredFile(filepath.Join(tmpDir, "missing.yaml")).Load()
		assert.ErrorIs(t, err, ErrFile)
	})

	t.Run("OverrideContradiction", func(t *testing.T) {
		_, err := NewBuilder().
			WithOverride("a", 1).
			WithOverride("a.b", 2).
			Load()
		assert.ErrorIs(t, err, ErrContradiction)
	})

	t.Run("Validator", func(t *testing.T) {
		errNoHost := errors.New("host missing")
		b := NewBuilder().
			WithSources(DataSource{Data: map[string]any{"server": map[string]any{"port": 1}}}).
			WithValidator(func(v Values) error {
				if !v.Has("server.host") {
					return errNoHost
				}
				return nil
			})

		_, err := b.Load()
		assert.ErrorIs(t, err, errNoHost)
		assert.Panics(t, func() { b.MustLoad() })
	})

	t.Run("TagName", func(t *testing.T) {
		var cfg struct {
			Name string `yaml:"app_name"`
		}
		err := NewBuilder().
			WithTagName("yaml").
			WithSources(FileSource{Data: []byte("app_name: demo\n"), Format: FormatYAML}).
			BuildAndScan(&cfg)
		require.NoError(t, err)
		assert.Equal(t, "demo", cfg.Name)
	})
}
