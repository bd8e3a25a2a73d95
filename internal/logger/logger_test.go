package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	if Log == nil {
		t.Fatal("Log should never be nil")
	}
	Log.Info("should be discarded")
}

func TestInitWithLevel(t *testing.T) {
	old := Log
	defer func() { Log = old }()

	InitWithLevel("warn")

	if Log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}
}

func TestInitWithUnknownLevel(t *testing.T) {
	old := Log
	defer func() { Log = old }()

	InitWithLevel("chatty")

	if !Log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("unknown level should fall back to info")
	}
	if Log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled when falling back to info")
	}
}
