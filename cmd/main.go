// FILE: lixenwraith/confz/cmd/main.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/lixenwraith/confz"
)

// Version is set via ldflags.
var Version = "dev"

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "confz",
		Usage:   "Inspect layered configuration from files, environment and overrides",
		Version: Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			dumpCommand(),
			getCommand(),
			checkCommand(),
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				confz.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
			return nil
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Configuration file (JSON, YAML or TOML), repeatable, later files win",
		},
		&cli.StringFlag{
			Name:  "env-prefix",
			Usage: "Load environment variables starting with this prefix",
		},
		&cli.BoolFlag{
			Name:  "env-all",
			Usage: "Load all environment variables",
		},
		&cli.StringFlag{
			Name:  "dotenv",
			Usage: "Dotenv file loaded below the environment",
		},
		&cli.StringFlag{
			Name:  "separator",
			Usage: "Separator splitting environment names into nested keys",
			Value: confz.EnvNestedSeparator,
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Override a value as path=value, applied last",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log every applied source",
		},
	}
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Print the merged configuration",
		Flags: []cli.Flag{outputFlag()},
		Action: func(c *cli.Context) error {
			values, err := load(c)
			if err != nil {
				return err
			}
			return confz.Dump(c.App.Writer, values, confz.Format(c.String("output")))
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value at a dot-separated path",
		ArgsUsage: "<path>",
		Flags:     []cli.Flag{outputFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("exactly one path is required")
			}
			path := c.Args().First()

			values, err := load(c)
			if err != nil {
				return err
			}

			value, found := values.Get(path)
			if !found {
				return fmt.Errorf("path not found: %s", path)
			}
			if nested, isMap := value.(map[string]any); isMap {
				return confz.Dump(c.App.Writer, nested, confz.Format(c.String("output")))
			}

			str, err := values.String(path)
			if err != nil {
				str = fmt.Sprint(value)
			}
			_, err = fmt.Fprintln(c.App.Writer, str)
			return err
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify that the configuration loads and contains the required paths",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "require",
				Aliases: []string{"r"},
				Usage:   "Path that must be present, repeatable",
			},
		},
		Action: func(c *cli.Context) error {
			values, err := load(c)
			if err != nil {
				return err
			}

			var missing []string
			for _, path := range c.StringSlice("require") {
				if !values.Has(path) {
					missing = append(missing, path)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing required paths: %s", strings.Join(missing, ", "))
			}

			_, err = fmt.Fprintf(c.App.Writer, "ok: %d values\n", len(values.Flatten()))
			return err
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output format: json, yaml, toml",
		Value:   string(confz.FormatYAML),
	}
}

// load builds the source list from the global flags
func load(c *cli.Context) (confz.Values, error) {
	b := confz.NewBuilder()

	for _, file := range c.StringSlice("file") {
		b = b.WithRequiredFile(file)
	}

	if c.Bool("env-all") || c.IsSet("env-prefix") || c.IsSet("dotenv") {
		b = b.WithSources(confz.EnvSource{
			AllowAll:        true,
			Prefix:          c.String("env-prefix"),
			File:            c.String("dotenv"),
			NestedSeparator: c.String("separator"),
		})
	}

	if sets := c.StringSlice("set"); len(sets) > 0 {
		flat := make(map[string]any, len(sets))
		for _, set := range sets {
			path, value, found := strings.Cut(set, "=")
			if !found || path == "" {
				return nil, fmt.Errorf("invalid --set %q, expected path=value", set)
			}
			flat[path] = value
		}
		nested, err := confz.Nest(flat, ".")
		if err != nil {
			return nil, err
		}
		b = b.WithSources(confz.DataSource{Data: nested})
	}

	return b.Load()
}
