// Package logging provides named zap loggers for the long-running parts of
// claimcheck (monitor, search). Logging is off until Init is called so plain
// CLI runs keep stdout/stderr clean for report output.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Init installs a real logger writing to stderr. With debug=true the level
// drops to Debug, otherwise Info.
func Init(debug bool) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return
	}

	mu.Lock()
	root = logger
	mu.Unlock()
}

// L returns a named sugared logger for a subsystem
func L(name string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(name).Sugar()
}

// Sync flushes buffered log entries; safe to call on the nop logger
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
