package maskpaint

import (
	"log/slog"

	"github.com/gogpu/maskpaint/internal/logging"
)

// SetLogger configures the logger for maskpaint and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by maskpaint:
//   - [slog.LevelDebug]: probes, checkpoints, cancelled gestures
//   - [slog.LevelInfo]: image loads, executor selection
//   - [slog.LevelWarn]: mask repairs, background fallback, frame overruns, forfeited history
//   - [slog.LevelError]: render handler failures
//
// Example:
//
//	maskpaint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the logger shared by maskpaint and its sub-packages.
// It never returns nil.
func Logger() *slog.Logger {
	return logging.Logger()
}
