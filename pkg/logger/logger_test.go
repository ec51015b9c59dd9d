package logger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
)

// resetGlobals lets a test run Setup again and restores the previous state.
func resetGlobals(t *testing.T) {
	t.Helper()
	origZap, origLogr, origFile := globalZapLogger, globalLogrLogger, logFile
	once = sync.Once{}
	globalZapLogger, globalLogrLogger, logFile = nil, nil, nil
	t.Cleanup(func() {
		once = sync.Once{}
		once.Do(func() {})
		globalZapLogger, globalLogrLogger, logFile = origZap, origLogr, origFile
	})
}

func TestSetupWritesJSONToOutput(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer

	log, err := Setup(Options{Output: &buf})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	log.Info("opening store", BackendKey, "demo")
	log.V(1).Info("hidden at info level")

	out := buf.String()
	if !strings.Contains(out, `"message":"opening store"`) || !strings.Contains(out, `"backend":"demo"`) {
		t.Errorf("expected structured entry, got %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("debug entry leaked at info level: %q", out)
	}
}

func TestSetupOnlyOnce(t *testing.T) {
	resetGlobals(t)
	var first, second bytes.Buffer

	l1, _ := Setup(Options{Output: &first})
	l2, _ := Setup(Options{Output: &second, Level: DebugLevel})
	if l1 != l2 {
		t.Fatal("Setup should return the same logger on later calls")
	}
	l2.Info("entry")
	if second.Len() != 0 || first.Len() == 0 {
		t.Error("later Setup options should be ignored")
	}
}

func TestSetupWritesToFile(t *testing.T) {
	resetGlobals(t)
	path := filepath.Join(t.TempDir(), "kvb.log")

	log, err := Setup(Options{Level: DebugLevel, File: path})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	log.V(1).Info("debug line", VaultKey, "unit")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"debug line"`) {
		t.Errorf("expected debug entry in log file, got %q", data)
	}
	if !strings.Contains(string(data), `"vault":"unit"`) {
		t.Errorf("expected vault key in log file, got %q", data)
	}
}

func TestSetupBadFileFallsBack(t *testing.T) {
	resetGlobals(t)
	path := filepath.Join(t.TempDir(), "missing-dir", "kvb.log")

	log, err := Setup(Options{File: path})
	if err == nil {
		t.Fatal("expected an error for an unwritable log path")
	}
	if log == nil || log == &defaultNoopLogger {
		t.Error("Setup should still return a working logger")
	}
}

func TestContextRoundTrip(t *testing.T) {
	lgr := logr.Discard()
	ctx := WithLogger(context.Background(), &lgr)

	if got := FromContext(ctx); got != &lgr {
		t.Error("FromContext should return the logger stored by WithLogger")
	}
	if again := WithLogger(ctx, &lgr); again != ctx {
		t.Error("WithLogger should keep the context when the logger is already set")
	}

	other := logr.Discard()
	if got := FromContext(WithLogger(ctx, &other)); got != &other {
		t.Error("WithLogger should replace a different logger")
	}
}

func TestFromContextFallbacks(t *testing.T) {
	orig := globalLogrLogger
	t.Cleanup(func() { globalLogrLogger = orig })

	globalLogrLogger = nil
	if got := FromContext(context.Background()); got != &defaultNoopLogger {
		t.Error("FromContext should fall back to the no-op logger before Setup")
	}

	global := logr.Discard()
	globalLogrLogger = &global
	if got := FromContext(context.Background()); got != &global {
		t.Error("FromContext should fall back to the global logger")
	}
}

func TestWithValuesReturnsNewLogger(t *testing.T) {
	lgr := logr.Discard()
	got := WithValues(&lgr, SubCommandKey, "list")
	if got == nil || got == &lgr {
		t.Error("WithValues should return a new logger")
	}
}

func TestSyncWithoutSetup(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	t.Cleanup(func() { globalZapLogger = orig })

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sync panicked without a logger: %v", r)
		}
	}()
	Sync()
}

func TestIsIgnorableSyncError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{syscall.ENOTTY, true},
		{&os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EINVAL}, true},
		{errors.New("sync /dev/stderr: The handle is invalid."), true},
		{errors.New("disk full"), false},
	}
	for _, tt := range tests {
		if got := isIgnorableSyncError(tt.err); got != tt.want {
			t.Errorf("isIgnorableSyncError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
