// Package logger provides process logging for listingtrail.
//
// It keeps a small package-level facade so any layer can log without
// threading a logger through constructors. Output is produced by zap:
// console encoding on stderr by default, JSON when serving. Verbose mode
// (--verbose or log.verbose) lowers the level from warn to debug.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	level   = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	output  zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	useJSON bool
	base    *zap.Logger
)

func init() {
	rebuild()
}

// rebuild must be called with mu held for writing (or during init).
func rebuild() {
	var enc zapcore.Encoder
	if useJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			LevelKey:       "level",
			MessageKey:     "msg",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		})
	}
	base = zap.New(zapcore.NewCore(enc, output, level))
}

// SetVerbose enables or disables debug output.
func SetVerbose(v bool) {
	if v {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.WarnLevel)
}

// IsVerbose returns true if debug output is enabled.
func IsVerbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// SetOutput sets the destination for log output.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = zapcore.Lock(zapcore.AddSync(w))
	rebuild()
}

// SetJSON switches between JSON and console encoding.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	useJSON = v
	rebuild()
}

// L returns the underlying structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered output.
func Sync() error {
	return L().Sync()
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	L().Sugar().Debugf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	L().Sugar().Debugf("=== %s ===", name)
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	L().Sugar().Infof(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	L().Sugar().Warnf(format, args...)
}

// Error logs a formatted message at error level.
func Error(format string, args ...any) {
	L().Sugar().Errorf(format, args...)
}
