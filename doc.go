// FILE: lixenwraith/confz/doc.go

// Package confz loads layered configuration into typed Go structs.
//
// Configuration is assembled from an ordered list of sources: files (JSON,
// YAML, TOML), environment variables with optional dotenv files, command-line
// options and literal data. Later sources take precedence. Nested mappings are
// merged key by key, and flat names such as "db.host" from the environment or
// the command line are split into nested keys. A key that is a plain value in
// one place and a nested mapping in another is an error.
//
// Quick Start:
//
//	type DBConfig struct {
//	    Host string `config:"host" validate:"required"`
//	    Port int    `config:"port" validate:"min=1,max=65535"`
//	}
//
//	type AppConfig struct {
//	    Debug bool     `config:"debug"`
//	    DB    DBConfig `config:"db"`
//	}
//
//	var Config = confz.Define[AppConfig]("app").WithSources(
//	    confz.FileSource{File: "config.yaml"},
//	    confz.EnvSource{AllowAll: true, Prefix: "APP_", NestedSeparator: "__"},
//	    confz.CLArgSource{},
//	)
//
//	cfg, err := Config.Get() // loaded once, then the same *AppConfig every time
//
// A class with static sources is a singleton. Construct with explicit sources
// always returns a fresh instance, and ChangeSources swaps the sources for a
// scope, which is mostly useful in tests:
//
//	scope := Config.ChangeSources(confz.DataSource{Data: map[string]any{"db": map[string]any{"host": "test"}}})
//	defer scope.Restore()
//
// Values derived from configuration, such as database clients, can be memoized
// with DependsOn. They are recomputed inside a scope and restored afterwards.
//
//	var DB = confz.DependsOn(func() (*sql.DB, error) {
//	    cfg, err := Config.Get()
//	    ...
//	}, Config)
//
// ValidateAll constructs every class with static sources at startup so that
// configuration errors are reported early.
//
// Custom source types are supported by registering a Loader with RegisterLoader.
package confz
