package whiteboard

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Logger is a minimal logging interface accepted by the SDK.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// noopLogger discards all logs.
type noopLogger struct{}

func (noopLogger) Debug(string, map[string]any) {}
func (noopLogger) Info(string, map[string]any)  {}
func (noopLogger) Warn(string, map[string]any)  {}
func (noopLogger) Error(string, map[string]any) {}

// LogFunc adapts a printf-style function, such as log.Printf, to Logger.
// Fields are appended as sorted key=value pairs.
type LogFunc func(format string, args ...any)

func (f LogFunc) Debug(msg string, fields map[string]any) { f.log("DEBUG", msg, fields) }
func (f LogFunc) Info(msg string, fields map[string]any)  { f.log("INFO", msg, fields) }
func (f LogFunc) Warn(msg string, fields map[string]any)  { f.log("WARN", msg, fields) }
func (f LogFunc) Error(msg string, fields map[string]any) { f.log("ERROR", msg, fields) }

func (f LogFunc) log(level, msg string, fields map[string]any) {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	f("%s: %s%s", level, msg, b.String())
}
