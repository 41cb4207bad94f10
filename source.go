// FILE: lixenwraith/confz/source.go
package confz

// Source describes where configuration data comes from. The built-in sources
// are FileSource, EnvSource, CLArgSource and DataSource; any other type can be
// used once a Loader is registered for it with RegisterLoader.
//
// Sources are values: loaders never modify them.
type Source any

// Format identifies a configuration file format.
type Format string

const (
	// FormatJSON is the JSON file format
	FormatJSON Format = "json"
	// FormatYAML is the YAML file format
	FormatYAML Format = "yaml"
	// FormatTOML is the TOML file format
	FormatTOML Format = "toml"
)

// DefaultNestedSeparator splits flat environment and command-line names into nested keys.
const DefaultNestedSeparator = "."

// FileSource loads a JSON, YAML or TOML file.
//
// The file is located by the first of these that is set: Data, File,
// FileFromEnv, FileFromCL, FileFromCLIndex.
type FileSource struct {
	// File is the path of the configuration file.
	File string

	// Data is the file content itself. Format must be set when Data is used.
	Data []byte

	// FileFromEnv names an environment variable holding the file path.
	FileFromEnv string

	// FileFromCL names a command-line option (e.g. "--config-file") followed by the path.
	// The path must be the next argument, "--option=path" is not supported.
	FileFromCL string

	// FileFromCLIndex takes the path from os.Args at this position (1 is the first argument).
	FileFromCLIndex int

	// Folder is prepended to relative file paths.
	Folder string

	// Format overrides the format inferred from the file extension.
	Format Format

	// Encoding of the file content. Empty means UTF-8.
	Encoding string

	// Optional suppresses errors when the file cannot be located or opened.
	// Invalid file content is always an error.
	Optional bool
}

// EnvSource loads environment variables and, optionally, a dotenv file.
//
// Variable names are lower-cased and dashes become underscores before they
// are matched against Allow, Deny and Remap, so those lists are neither
// case-sensitive nor dash-sensitive. Prefix must match exactly.
type EnvSource struct {
	// AllowAll admits every variable (subject to Prefix and Deny).
	AllowAll bool

	// Allow lists the variables to admit when AllowAll is false, without Prefix.
	Allow []string

	// Deny lists variables to reject, without Prefix.
	Deny []string

	// Prefix restricts loading to variables starting with it. The prefix is removed from the name.
	Prefix string

	// Remap renames variables (without Prefix) to config keys.
	Remap map[string]string

	// File is a dotenv file. Its values have lower precedence than the live environment.
	File string

	// Data is dotenv content, used instead of File when set.
	Data []byte

	// NestedSeparator splits names into nested keys. Defaults to ".".
	NestedSeparator string
}

// CLArgSource loads command-line options of the form "--name value" from os.Args.
// Names are case-sensitive.
type CLArgSource struct {
	// Prefix restricts loading to options starting with it (without the dashes).
	// The prefix is removed from the name.
	Prefix string

	// Remap renames options (without dashes and Prefix) to config keys.
	Remap map[string]string

	// NestedSeparator splits names into nested keys. Defaults to ".".
	NestedSeparator string
}

// DataSource injects a literal, possibly nested, mapping. It is mostly useful
// for constants and tests.
type DataSource struct {
	Data map[string]any
}

func separatorOrDefault(sep string) string {
	if sep == "" {
		return DefaultNestedSeparator
	}
	return sep
}
