// FILE: lixenwraith/confz/logging.go
package confz

import (
	"log/slog"
	"sync/atomic"
)

var packageLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used for debug records about loading, singletons
// and scopes. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	packageLogger.Store(l)
}

func logger() *slog.Logger {
	if l := packageLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
