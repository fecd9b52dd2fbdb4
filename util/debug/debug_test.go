package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDebugfSilentWithoutFile(t *testing.T) {
	logFile = nil
	// Must not panic and must produce no observable side effect.
	Debugf("fetch", MaskFetch, LevelAll, "pc=%#x", 0x1000)
}

func TestCreateAndDebugf(t *testing.T) {
	defer func() { logFile = nil }()

	path := filepath.Join(t.TempDir(), "trace.log")
	if err := create(path); err != nil {
		t.Fatalf("create: %v", err)
	}

	Debugf("fetch", MaskFetch, LevelAll, "pc=%#x", 0x1000)
	DebugRegf("c1", MaskCapability, LevelAll, "tag cleared")
	Debugf("csr", MaskCSR, MaskFetch, "should be suppressed")

	logFile.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "fetch: pc=0x1000") {
		t.Errorf("missing fetch trace line, got %q", got)
	}
	if !strings.Contains(got, "c1: tag cleared") {
		t.Errorf("missing register trace line, got %q", got)
	}
	if strings.Contains(got, "should be suppressed") {
		t.Errorf("mask/level mismatch should have suppressed the message, got %q", got)
	}
}

func TestCreateTwiceFails(t *testing.T) {
	defer func() { logFile = nil }()

	path := filepath.Join(t.TempDir(), "trace.log")
	if err := create(path); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := create(filepath.Join(t.TempDir(), "other.log")); err == nil {
		t.Errorf("expected second create to fail")
	}
}
