// Package logging configures the shared zap logger for CLI output.
//
// All diagnostics go to standard error with a level tag and a UTC plus
// local timestamp pair, so vault operations can be correlated across
// machines in different timezones. Stdout stays reserved for command
// output (including --json envelopes).
package logging

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a console logger writing to stderr.
// verbose enables debug-level output.
func New(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     encodeDualTime,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// Nop returns a no-op logger for tests and library callers that do not
// care about diagnostics.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// encodeDualTime renders "2026-08-26T10:04:05Z 2026-08-26T12:04:05+02:00".
func encodeDualTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339) + " " + t.Format(time.RFC3339))
}
