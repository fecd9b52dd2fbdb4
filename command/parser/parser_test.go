package parser

import (
	"strings"
	"testing"

	"github.com/cheriot-sim/cheriot/engine"
	"github.com/cheriot-sim/cheriot/memory"
)

func newTestEngine() *engine.Engine {
	mem := memory.New(0x10000)
	router := memory.NewRouter(mem)
	return engine.New(router)
}

func TestProcessCommandUnknown(t *testing.T) {
	eng := newTestEngine()
	if _, err := ProcessCommand("bogus", eng); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestProcessCommandEmptyLineIsNoop(t *testing.T) {
	eng := newTestEngine()
	quit, err := ProcessCommand("   ", eng)
	if err != nil || quit {
		t.Fatalf("blank line should be a silent no-op, got quit=%v err=%v", quit, err)
	}
}

func TestProcessCommandQuit(t *testing.T) {
	eng := newTestEngine()
	quit, err := ProcessCommand("quit", eng)
	if err != nil || !quit {
		t.Fatalf("quit should succeed and request exit, got quit=%v err=%v", quit, err)
	}
}

func TestProcessCommandAmbiguousPrefix(t *testing.T) {
	eng := newTestEngine()
	// "s" alone is too short (Min) for any single command and also
	// matches multiple names (stop, stepi), so it must fail either way.
	if _, err := ProcessCommand("s", eng); err == nil {
		t.Fatalf("expected an error for an ambiguous/too-short prefix")
	}
}

func TestRegReadWriteRoundTrip(t *testing.T) {
	eng := newTestEngine()
	if _, err := ProcessCommand("reg a0 0x42", eng); err != nil {
		t.Fatalf("reg write: %v", err)
	}
	v, err := eng.ReadRegister("a0")
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != 0x42 {
		t.Fatalf("a0 = %#x, want 0x42", v)
	}
}

func TestBreakSetAndClear(t *testing.T) {
	eng := newTestEngine()
	if _, err := ProcessCommand("break 0x1000", eng); err != nil {
		t.Fatalf("break: %v", err)
	}
	if !eng.HasBreakpoint(0x1000) {
		t.Fatalf("expected breakpoint at 0x1000")
	}
	if _, err := ProcessCommand("break clear 0x1000", eng); err != nil {
		t.Fatalf("break clear: %v", err)
	}
	if eng.HasBreakpoint(0x1000) {
		t.Fatalf("expected breakpoint cleared")
	}
}

func TestWatchSetAndClear(t *testing.T) {
	eng := newTestEngine()
	if _, err := ProcessCommand("watch 0x2000 8 rw", eng); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if _, err := ProcessCommand("watch clear 0x2000", eng); err != nil {
		t.Fatalf("watch clear: %v", err)
	}
}

func TestMemReadWriteRoundTrip(t *testing.T) {
	eng := newTestEngine()
	if _, err := ProcessCommand("mem 0x100 write 1 2 3 4", eng); err != nil {
		t.Fatalf("mem write: %v", err)
	}
	data, err := eng.ReadMemory(0x100, 4)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	if string(data) != "\x01\x02\x03\x04" {
		t.Fatalf("got %v", data)
	}
}

func TestCompleteCmdMatchesPrefix(t *testing.T) {
	matches := CompleteCmd("br")
	found := false
	for _, m := range matches {
		if m == "break" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'break' among completions for 'br', got %v", matches)
	}
}

func TestCompleteCmdRegisterArgument(t *testing.T) {
	matches := CompleteCmd("reg a")
	if len(matches) == 0 {
		t.Fatalf("expected at least one register name starting with 'a'")
	}
	for _, m := range matches {
		if !strings.HasPrefix(m, "a") {
			t.Fatalf("unexpected completion %q for 'reg a'", m)
		}
	}
}

func TestInfoReportsStatus(t *testing.T) {
	eng := newTestEngine()
	if _, err := ProcessCommand("info", eng); err != nil {
		t.Fatalf("info: %v", err)
	}
}

func TestStepiAdvancesPC(t *testing.T) {
	eng := newTestEngine()
	eng.Proc.PCC.SetAddress(0)
	// addi x1, x0, 1 — a harmless instruction to step over.
	if err := eng.Mem.Memory().StoreUint(0, 4, 0x00100093); err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, err := ProcessCommand("stepi 1", eng); err != nil {
		t.Fatalf("stepi: %v", err)
	}
	if eng.Proc.PCC.Address == 0 {
		t.Fatalf("expected pc to advance past 0")
	}
}
