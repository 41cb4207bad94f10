// FILE: lixenwraith/confz/env_test.go
package confz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnvLoading tests environment variable loading
func TestEnvLoading(t *testing.T) {
	t.Run("AllowAllWithSeparator", func(t *testing.T) {
		t.Setenv("CONFZ_T1_INNER__ATTR1", "1")
		t.Setenv("CONFZ_T1_ATTR2", "2")

		values, err := Load(nil, EnvSource{AllowAll: true, Prefix: "CONFZ_T1_", NestedSeparator: "__"})
		require.NoError(t, err)
		assert.Equal(t, Values{
			"inner": map[string]any{"attr1": "1"},
			"attr2": "2",
		}, values)
	})

	t.Run("PrefixIsDropped", func(t *testing.T) {
		t.Setenv("CONFZ_T2_ATTR", "value")

		values, err := Load(nil, EnvSource{AllowAll: true, Prefix: "CONFZ_T2_"})
		require.NoError(t, err)
		assert.Equal(t, Values{"attr": "value"}, values)
	})

	t.Run("PrefixIsCaseSensitive", func(t *testing.T) {
		t.Setenv("CONFZ_T3_ATTR", "value")

		values, err := Load(nil, EnvSource{AllowAll: true, Prefix: "confz_t3_"})
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("DotSeparatorByDefault", func(t *testing.T) {
		t.Setenv("CONFZ_T4_DB.HOST", "db")

		values, err := Load(nil, EnvSource{AllowAll: true, Prefix: "CONFZ_T4_"})
		require.NoError(t, err)
		assert.Equal(t, Values{"db": map[string]any{"host": "db"}}, values)
	})

	t.Run("AllowList", func(t *testing.T) {
		t.Setenv("CONFZ_T5_ALLOWED", "yes")
		t.Setenv("CONFZ_T5_OTHER", "no")

		values, err := Load(nil, EnvSource{Allow: []string{"Allowed"}, Prefix: "CONFZ_T5_"})
		require.NoError(t, err)
		assert.Equal(t, Values{"allowed": "yes"}, values)
	})

	t.Run("NothingAllowed", func(t *testing.T) {
		t.Setenv("CONFZ_T6_ATTR", "value")

		values, err := Load(nil, EnvSource{Prefix: "CONFZ_T6_"})
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("DenyWinsOverAllow", func(t *testing.T) {
		t.Setenv("CONFZ_T7_A", "a")
		t.Setenv("CONFZ_T7_SECRET_KEY", "s")

		values, err := Load(nil, EnvSource{
			AllowAll: true,
			Prefix:   "CONFZ_T7_",
			Deny:     []string{"secret-key"},
		})
		require.NoError(t, err)
		assert.Equal(t, Values{"a": "a"}, values)
	})

	t.Run("Remap", func(t *testing.T) {
		t.Setenv("CONFZ_T8_DB_HOST", "db")

		values, err := Load(nil, EnvSource{
			AllowAll: true,
			Prefix:   "CONFZ_T8_",
			Remap:    map[string]string{"DB-HOST": "database.host"},
		})
		require.NoError(t, err)
		assert.Equal(t, Values{"database": map[string]any{"host": "db"}}, values)
	})

	t.Run("ValuesStayStrings", func(t *testing.T) {
		t.Setenv("CONFZ_T9_PORT", "8080")

		values, err := Load(nil, EnvSource{AllowAll: true, Prefix: "CONFZ_T9_"})
		require.NoError(t, err)
		assert.Equal(t, "8080", values["port"])

		port, err := values.Int64("port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("Contradiction", func(t *testing.T) {
		t.Setenv("CONFZ_T10_A", "1")
		t.Setenv("CONFZ_T10_A.B", "2")

		_, err := Load(nil, EnvSource{AllowAll: true, Prefix: "CONFZ_T10_"})
		assert.ErrorIs(t, err, ErrContradiction)
	})
}

func TestDotenv(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(tmpDir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("CONFZ_D1_NAME=from-file\nCONFZ_D1_PORT=1234\n"), 0644))

		values, err := Load(nil, EnvSource{AllowAll: true, Prefix: "CONFZ_D1_", File: path})
		require.NoError(t, err)
		assert.Equal(t, Values{"name": "from-file", "port": "1234"}, values)
	})

	t.Run("EnvironmentWinsOverFile", func(t *testing.T) {
		t.Setenv("CONFZ_D2_NAME", "from-env")

		values, err := Load(nil, EnvSource{
			AllowAll: true,
			Prefix:   "CONFZ_D2_",
			Data:     []byte("CONFZ_D2_NAME=from-data\nCONFZ_D2_OTHER=x\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, Values{"name": "from-env", "other": "x"}, values)
	})

	t.Run("MissingFileIgnored", func(t *testing.T) {
		values, err := Load(nil, EnvSource{AllowAll: true, Prefix: "CONFZ_D3_", File: filepath.Join(tmpDir, "missing.env")})
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("QuotedValues", func(t *testing.T) {
		values, err := Load(nil, EnvSource{
			AllowAll:        true,
			Prefix:          "CONFZ_D4_",
			NestedSeparator: "__",
			Data:            []byte("# comment\nCONFZ_D4_DB__URL=\"postgres://h/db?x=1\"\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, Values{"db": map[string]any{"url": "postgres://h/db?x=1"}}, values)
	})
}

func TestCanonicalEnvName(t *testing.T) {
	assert.Equal(t, "server_port", canonicalEnvName("SERVER-PORT"))
	assert.Equal(t, "a.b", canonicalEnvName("A.B"))
}
