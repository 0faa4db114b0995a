// Package utils carries the small shared pieces: the process-wide logger.
package utils

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// Logger returns the process logger, building it on first use. With LOG_FILE
// set, log lines are teed to that file and stdout; otherwise it is a plain
// production logger. Failures fall back to stdout-only logging.
func Logger() *zap.Logger {
	if logger != nil {
		return logger
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		l, _ := zap.NewProduction()
		logger = l
		return logger
	}
	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l, _ := zap.NewProduction()
		logger = l
		return logger
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	lvl := zapcore.InfoLevel
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
	logger = zap.New(zapcore.NewTee(fileCore, consoleCore))
	return logger
}

// Named returns the process logger scoped to a subsystem name.
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}

// Sync flushes buffered log entries. Call on process exit.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
