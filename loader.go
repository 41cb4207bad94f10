// FILE: lixenwraith/confz/loader.go
package confz

import (
	"fmt"
	"log/slog"
)

// Load builds the raw configuration map: it starts from a copy of overrides
// and applies each source in order, later sources taking precedence.
// The returned map is not validated; see Decode and Validate.
func Load(overrides map[string]any, sources ...Source) (Values, error) {
	config := cloneMap(overrides)

	for i, src := range sources {
		loader, err := GetLoader(src)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}

		if err := loader.Populate(config, src); err != nil {
			return nil, fmt.Errorf("source %d (%T): %w", i, src, err)
		}
		logger().Debug("config source applied", slog.Int("index", i), slog.String("type", fmt.Sprintf("%T", src)))
	}

	return config, nil
}

// DataLoader merges the literal data of a DataSource.
type DataLoader struct{}

// Populate implements Loader.
func (DataLoader) Populate(config map[string]any, src Source) error {
	s, err := sourceAs[DataSource](src)
	if err != nil {
		return err
	}
	data, _ := normalizeValue(s.Data).(map[string]any)
	return MergeRecursive(config, data)
}
