// FILE: lixenwraith/confz/helper_test.go
package confz

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs replaces os.Args for the duration of the test
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"confz.test"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestNest(t *testing.T) {
	t.Run("SplitsOnSeparator", func(t *testing.T) {
		nested, err := Nest(map[string]any{
			"a.b.c": 1,
			"a.b.d": 2,
			"a.e":   "x",
			"top":   true,
		}, ".")
		require.NoError(t, err)

		want := map[string]any{
			"a": map[string]any{
				"b": map[string]any{"c": 1, "d": 2},
				"e": "x",
			},
			"top": true,
		}
		if diff := cmp.Diff(want, nested); diff != "" {
			t.Errorf("Nest() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("CustomSeparator", func(t *testing.T) {
		nested, err := Nest(map[string]any{"db__host": "h", "db_name": "n"}, "__")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"db":      map[string]any{"host": "h"},
			"db_name": "n",
		}, nested)
	})

	t.Run("LeadingSeparatorIsLiteral", func(t *testing.T) {
		nested, err := Nest(map[string]any{".hidden": 1, "a.b": 2}, ".")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			".hidden": 1,
			"a":       map[string]any{"b": 2},
		}, nested)
	})

	t.Run("EmptySeparatorKeepsKeys", func(t *testing.T) {
		nested, err := Nest(map[string]any{"a.b": 1}, "")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a.b": 1}, nested)
	})

	t.Run("ValueThenPrefix", func(t *testing.T) {
		_, err := Nest(map[string]any{"a": 1, "a.b": 2}, ".")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrContradiction)

		var ce *ContradictionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "a", ce.Key)
	})

	t.Run("DeepContradiction", func(t *testing.T) {
		_, err := Nest(map[string]any{"a.b": 1, "a.b.c": 2}, ".")
		var ce *ContradictionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "a.b", ce.Key)
	})

	t.Run("NestedValueMergesWithSplitKeys", func(t *testing.T) {
		nested, err := Nest(map[string]any{
			"a":   map[string]any{"x": 1},
			"a.y": 2,
		}, ".")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": map[string]any{"x": 1, "y": 2}}, nested)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		nested, err := Nest(nil, ".")
		require.NoError(t, err)
		assert.Empty(t, nested)
	})
}

func TestFlatten(t *testing.T) {
	nested := map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"tls":  map[string]any{"enabled": true},
		},
		"empty": map[string]any{},
		"list":  []any{int64(1), int64(2)},
	}

	flat := Flatten(nested, ".")
	assert.Equal(t, map[string]any{
		"server.host":        "localhost",
		"server.tls.enabled": true,
		"empty":              map[string]any{},
		"list":               []any{int64(1), int64(2)},
	}, flat)

	t.Run("RoundTrip", func(t *testing.T) {
		restored, err := Nest(flat, ".")
		require.NoError(t, err)
		if diff := cmp.Diff(nested, restored); diff != "" {
			t.Errorf("Nest(Flatten()) mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestNormalizeValue(t *testing.T) {
	in := map[string]any{
		"int":   json.Number("42"),
		"float": json.Number("1.5"),
		"yaml":  map[any]any{1: "one", "k": []any{json.Number("7")}},
		"maps":  []map[string]any{{"a": json.Number("1")}},
	}

	got := normalizeValue(in)
	assert.Equal(t, map[string]any{
		"int":   int64(42),
		"float": 1.5,
		"yaml":  map[string]any{"1": "one", "k": []any{int64(7)}},
		"maps":  []any{map[string]any{"a": int64(1)}},
	}, got)
}

func TestCloneValue(t *testing.T) {
	orig := map[string]any{"a": map[string]any{"b": []any{"x"}}}
	clone := cloneValue(orig).(map[string]any)

	clone["a"].(map[string]any)["b"].([]any)[0] = "changed"
	clone["a"].(map[string]any)["c"] = 1

	assert.Equal(t, map[string]any{"a": map[string]any{"b": []any{"x"}}}, orig)
}
