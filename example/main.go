// FILE: lixenwraith/confz/example/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/confz"
)

// DatabaseConfig is nested under "database"
type DatabaseConfig struct {
	URL         *url.URL      `config:"url" validate:"required"`
	MaxConns    int           `config:"max_conns" validate:"min=1"`
	IdleTimeout time.Duration `config:"idle_timeout"`
}

// AppConfig represents our application configuration
type AppConfig struct {
	Server struct {
		Host string `config:"host" validate:"required"`
		Port int    `config:"port" validate:"min=1,max=65535"`
	} `config:"server"`

	Database DatabaseConfig `config:"database"`

	Features struct {
		RateLimit bool `config:"rate_limit"`
		Caching   bool `config:"caching"`
	} `config:"features"`
}

const exampleConfig = `
[server]
host = "localhost"
port = 8080

[database]
url = "postgres://db.internal:5432/app"
max_conns = 10
idle_timeout = "30s"
`

// dbPool stands in for a client built from configuration
type dbPool struct {
	dsn      string
	maxConns int
}

func main() {
	confz.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	dir, err := os.MkdirTemp("", "confz-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		log.Fatal(err)
	}

	// File < environment (MYAPP_SERVER__PORT=9090) < command line (--server.port 9091)
	appConfig := confz.Define[AppConfig]("app").
		WithSources(
			confz.FileSource{File: configPath},
			confz.FileSource{FileFromEnv: "MYAPP_CONFIG", Optional: true},
			confz.EnvSource{AllowAll: true, Prefix: "MYAPP_", Deny: []string{"config"}, NestedSeparator: "__"},
			confz.CLArgSource{},
		).
		WithValidator(func(c *AppConfig) error {
			if c.Features.Caching && c.Database.MaxConns < 2 {
				return fmt.Errorf("caching requires at least 2 database connections")
			}
			return nil
		})

	pool := confz.DependsOnContext(func(ctx context.Context) (*dbPool, error) {
		cfg, err := appConfig.Get()
		if err != nil {
			return nil, err
		}
		return &dbPool{dsn: cfg.Database.URL.String(), maxConns: cfg.Database.MaxConns}, nil
	}, appConfig)

	// Fail early on invalid configuration
	if err := confz.ValidateAll(context.Background(), true); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	cfg := appConfig.MustGet()
	log.Printf("Server: %s:%d", cfg.Server.Host, cfg.Server.Port)

	p, _ := pool.GetContext(context.Background())
	log.Printf("Pool: %s (max %d)", p.dsn, p.maxConns)

	// Temporarily point the class at test data
	err = appConfig.RunWithSources(func() error {
		testCfg, err := appConfig.Get()
		if err != nil {
			return err
		}
		testPool, err := pool.Get()
		if err != nil {
			return err
		}
		log.Printf("Scoped server: %s:%d, pool %s", testCfg.Server.Host, testCfg.Server.Port, testPool.dsn)
		return nil
	}, confz.DataSource{Data: map[string]any{
		"server":   map[string]any{"host": "127.0.0.1", "port": 18080},
		"database": map[string]any{"url": "postgres://localhost:5432/test", "max_conns": 1},
	}})
	if err != nil {
		log.Fatal("Scoped configuration failed:", err)
	}

	restored, _ := pool.Get()
	log.Printf("Restored pool is the original: %t", restored == p)

	// The merged values can also be written back out
	values, err := confz.Load(nil, confz.FileSource{File: configPath})
	if err != nil {
		log.Fatal(err)
	}
	if err := confz.Dump(os.Stdout, values, confz.FormatYAML); err != nil {
		log.Fatal(err)
	}
}
