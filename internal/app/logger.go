package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/vk/xodrun/internal/ctxlog"
)

// logLevels maps the log_level setting to slog levels.
var logLevels = map[string]slog.Level{
	"trace": ctxlog.LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. Unknown
// levels fall back to info.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[strings.ToLower(levelStr)]
	if !ok {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceAttr}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}

// replaceAttr labels the trace level and writes durations such as a
// transaction's elapsed time as "1.5ms" rather than nanoseconds.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	a = ctxlog.ReplaceLevel(groups, a)
	if a.Value.Kind() == slog.KindDuration {
		a.Value = slog.StringValue(a.Value.Duration().String())
	}
	return a
}
