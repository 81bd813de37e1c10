package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})

	Logf("decode %d failed", 7)
	if captured != "decode 7 failed" {
		t.Errorf("expected captured log, got %q", captured)
	}
}

func TestSetLoggerNilIsNoop(t *testing.T) {
	SetLogger(nil)
	// Must not panic.
	Logf("dropped %s", "message")
}

func TestDebugfGated(t *testing.T) {
	defer SetLogger(nil)
	defer func() { Debug = false }()

	var count int
	SetLogger(func(format string, v ...interface{}) { count++ })

	Debug = false
	Debugf("hidden")
	if count != 0 {
		t.Errorf("Debugf logged with Debug=false")
	}

	Debug = true
	Debugf("visible")
	if count != 1 {
		t.Errorf("expected 1 log with Debug=true, got %d", count)
	}
}
