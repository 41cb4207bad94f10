// FILE: lixenwraith/confz/dynamic_test.go
package confz

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbConfig struct {
	Host string `config:"host" validate:"required"`
}

func dbData(host string) DataSource {
	return DataSource{Data: map[string]any{"host": host}}
}

// TestChangeSources tests scoped source replacement
func TestChangeSources(t *testing.T) {
	t.Run("ScopeAndRestore", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))
		before := cfg.MustGet()

		scope := cfg.ChangeSources(dbData("test"))
		inside := cfg.MustGet()
		assert.Equal(t, "test", inside.Host)
		assert.NotSame(t, before, inside)
		assert.Same(t, inside, cfg.MustGet())
		assert.Equal(t, "db", scope.Class())

		scope.Restore()
		assert.Same(t, before, cfg.MustGet())

		sources, static := cfg.Sources()
		assert.True(t, static)
		assert.Equal(t, []Source{dbData("prod")}, sources)
	})

	t.Run("RestoreIsIdempotent", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))
		before := cfg.MustGet()

		outer := cfg.ChangeSources(dbData("outer"))
		outer.Restore()

		inner := cfg.ChangeSources(dbData("again"))
		outer.Restore()
		assert.Equal(t, "again", cfg.MustGet().Host)

		inner.Restore()
		assert.Same(t, before, cfg.MustGet())
	})

	t.Run("NestedScopes", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))
		before := cfg.MustGet()

		outer := cfg.ChangeSources(dbData("outer"))
		outerInstance := cfg.MustGet()

		inner := cfg.ChangeSources(dbData("inner"))
		assert.Equal(t, "inner", cfg.MustGet().Host)
		inner.Restore()

		assert.Same(t, outerInstance, cfg.MustGet())
		outer.Restore()
		assert.Same(t, before, cfg.MustGet())
	})

	t.Run("ClassWithoutStaticSources", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db")

		_, err := cfg.Construct(map[string]any{"host": "plain"})
		require.NoError(t, err)

		scope := cfg.ChangeSources(dbData("scoped"))
		first := cfg.MustGet()
		assert.Equal(t, "scoped", first.Host)
		assert.Same(t, first, cfg.MustGet())
		scope.Restore()

		_, static := cfg.Sources()
		assert.False(t, static)
		got, err := cfg.Construct(map[string]any{"host": "plain"})
		require.NoError(t, err)
		assert.Equal(t, "plain", got.Host)
	})

	t.Run("RunWithSources", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))
		before := cfg.MustGet()

		errInside := errors.New("inside")
		err := cfg.RunWithSources(func() error {
			assert.Equal(t, "test", cfg.MustGet().Host)
			return errInside
		}, dbData("test"))
		assert.ErrorIs(t, err, errInside)
		assert.Same(t, before, cfg.MustGet())
	})

	t.Run("RunWithSourcesRestoresOnPanic", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))
		before := cfg.MustGet()

		assert.Panics(t, func() {
			_ = cfg.RunWithSources(func() error {
				panic("boom")
			}, dbData("test"))
		})
		assert.Same(t, before, cfg.MustGet())
	})
}

// TestListener tests memoized values depending on classes
func TestListener(t *testing.T) {
	t.Run("Memoized", func(t *testing.T) {
		var calls atomic.Int32
		l := DependsOn(func() (int, error) {
			calls.Add(1)
			return 42, nil
		})

		for range 3 {
			v, err := l.Get()
			require.NoError(t, err)
			assert.Equal(t, 42, v)
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("ErrorsNotMemoized", func(t *testing.T) {
		var calls atomic.Int32
		l := DependsOn(func() (string, error) {
			if calls.Add(1) == 1 {
				return "", errors.New("first call fails")
			}
			return "ok", nil
		})

		_, err := l.Get()
		require.Error(t, err)

		v, err := l.Get()
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("ResetInsideScope", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))

		type client struct{ host string }
		l := DependsOn(func() (*client, error) {
			c, err := cfg.Get()
			if err != nil {
				return nil, err
			}
			return &client{host: c.Host}, nil
		}, cfg)

		before := l.MustGet()
		assert.Equal(t, "prod", before.host)

		scope := cfg.ChangeSources(dbData("test"))
		inside := l.MustGet()
		assert.Equal(t, "test", inside.host)
		assert.Same(t, inside, l.MustGet())

		scope.Restore()
		assert.Same(t, before, l.MustGet())
	})

	t.Run("ScopeBeforeFirstUse", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))
		l := DependsOn(func() (string, error) {
			c, err := cfg.Get()
			if err != nil {
				return "", err
			}
			return c.Host, nil
		}, cfg)

		err := cfg.RunWithSources(func() error {
			v, err := l.Get()
			assert.Equal(t, "test", v)
			return err
		}, dbData("test"))
		require.NoError(t, err)

		// Nothing was memoized before the scope, so the value is computed anew
		assert.Equal(t, "prod", l.MustGet())
	})

	t.Run("RegisteredInsideScope", func(t *testing.T) {
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))

		scope := cfg.ChangeSources(dbData("test"))
		l := DependsOn(func() (string, error) {
			c, err := cfg.Get()
			if err != nil {
				return "", err
			}
			return c.Host, nil
		}, cfg)
		assert.Equal(t, "test", l.MustGet())
		scope.Restore()

		assert.Equal(t, "prod", l.MustGet())
	})

	t.Run("UnrelatedClassScope", func(t *testing.T) {
		r := NewClassRegistry()
		cfg := DefineIn[dbConfig](r, "db").WithSources(dbData("prod"))
		other := DefineIn[dbConfig](r, "other").WithSources(dbData("other"))

		var calls atomic.Int32
		l := DependsOn(func() (string, error) {
			calls.Add(1)
			return cfg.MustGet().Host, nil
		}, cfg)
		l.MustGet()

		scope := other.ChangeSources(dbData("changed"))
		l.MustGet()
		scope.Restore()

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("MultipleClasses", func(t *testing.T) {
		r := NewClassRegistry()
		a := DefineIn[dbConfig](r, "a").WithSources(dbData("a"))
		b := DefineIn[dbConfig](r, "b").WithSources(dbData("b"))

		l := DependsOn(func() (string, error) {
			return a.MustGet().Host + "+" + b.MustGet().Host, nil
		}, a, b)
		assert.Equal(t, "a+b", l.MustGet())

		scope := b.ChangeSources(dbData("B"))
		assert.Equal(t, "a+B", l.MustGet())
		scope.Restore()
		assert.Equal(t, "a+b", l.MustGet())
	})

	t.Run("Context", func(t *testing.T) {
		type ctxKey struct{}
		cfg := DefineIn[dbConfig](NewClassRegistry(), "db").WithSources(dbData("prod"))

		l := DependsOnContext(func(ctx context.Context) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			value, _ := ctx.Value(ctxKey{}).(string)
			return value + "@" + cfg.MustGet().Host, nil
		}, cfg)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := l.GetContext(cancelled)
		assert.ErrorIs(t, err, context.Canceled)

		v, err := l.GetContext(context.WithValue(context.Background(), ctxKey{}, "svc"))
		require.NoError(t, err)
		assert.Equal(t, "svc@prod", v)

		scope := cfg.ChangeSources(dbData("test"))
		v, err = l.Get()
		require.NoError(t, err)
		assert.Equal(t, "@test", v)
		scope.Restore()

		assert.Equal(t, "svc@prod", l.MustGet())
	})
}
