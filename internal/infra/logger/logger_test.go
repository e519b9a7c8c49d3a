package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewParsesLevel(t *testing.T) {
	t.Parallel()

	log, err := New("WARN")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug to be disabled at warn level")
	}

	if _, err := New("loud"); err == nil {
		t.Fatal("expected invalid level error")
	}
}
