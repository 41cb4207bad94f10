// FILE: lixenwraith/confz/args.go
package confz

import (
	"os"
	"strings"
)

// CLArgLoader loads a CLArgSource from os.Args.
type CLArgLoader struct{}

// Populate implements Loader.
func (CLArgLoader) Populate(config map[string]any, src Source) error {
	s, err := sourceAs[CLArgSource](src)
	if err != nil {
		return err
	}

	var args []string
	if len(os.Args) > 1 {
		args = os.Args[1:]
	}

	nested, err := Nest(parseArgs(args, s.Prefix, s.Remap), separatorOrDefault(s.NestedSeparator))
	if err != nil {
		return err
	}
	return MergeRecursive(config, nested)
}

// parseArgs collects "--name value" pairs into a flat map of string values.
// Every "--name" that is followed by another argument takes that argument as
// its value, even when the value itself starts with "--". A trailing "--name"
// without a value is ignored. Later occurrences of a name win.
func parseArgs(args []string, prefix string, remap map[string]string) map[string]any {
	result := make(map[string]any)

	for i := 0; i+1 < len(args); i++ {
		name, isOption := strings.CutPrefix(args[i], "--")
		// Skip plain arguments and the "--" separator
		if !isOption || name == "" {
			continue
		}

		if !strings.HasPrefix(name, prefix) {
			continue
		}
		name = strings.TrimPrefix(name, prefix)

		if target, exists := remap[name]; exists {
			name = target
		}

		result[name] = args[i+1]
	}

	return result
}
