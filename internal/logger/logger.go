package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init is called.
var Log = zap.NewNop()

// InitWithLevel replaces Log with a console logger at the given level.
// Unknown levels fall back to info.
func InitWithLevel(level string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		// TODO: surface this to the caller once Init returns an error
		return
	}
	Log = l
}

// Sync flushes any buffered entries.
func Sync() {
	_ = Log.Sync()
}
