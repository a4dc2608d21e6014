// Package logx owns the run log file. Every workflow line shown to the
// operator is mirrored here with a timestamp and a run id so a release
// session can be reconstructed afterwards.
package logx

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	global *zap.SugaredLogger
)

// Init opens or creates the log file in append mode and installs the
// global logger, tagging every entry with the run id.
func Init(path, runID string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(f), zapcore.InfoLevel)
	logger := zap.New(core).Sugar().With("run", runID)

	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		_ = global.Sync()
	}
	global = logger
	return nil
}

// Get returns the global logger. Before Init it returns a no-op logger so
// callers never need a nil check.
func Get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = zap.NewNop().Sugar()
	}
	return global
}

// Sync flushes buffered entries; call before the process exits.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		_ = global.Sync()
	}
}

// Reset drops the global logger. Tests use it to isolate output.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	global = nil
}
