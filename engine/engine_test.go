package engine

import (
	"testing"

	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/memory"
	"github.com/cheriot-sim/cheriot/state"
)

func newTestEngine(size uint32) *Engine {
	mem := memory.New(size)
	router := memory.NewRouter(mem)
	return New(router)
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm) << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

// TestLoadOutOfBoundsTraps is the literal "load through an out-of-bounds
// capability traps with mcause=28" scenario.
func TestLoadOutOfBoundsTraps(t *testing.T) {
	e := newTestEngine(0x10000)

	var root capability.Cap
	root.ResetMemoryRoot()
	root.SetAddress(0x1000)
	root.SetBounds(0x1000, 0x200)
	e.Proc.SetGPR(1, root)

	e.Proc.PCC.SetAddress(0x100)
	if err := e.Mem.Memory().StoreUint(0x100, 4, uint64(encodeI(opLoad, 3, 0x2, 1, 0x210))); err != nil {
		t.Fatal(err)
	}

	if e.Step() {
		t.Fatalf("expected load fault, step reported success")
	}

	if e.Proc.MCause() != state.CauseCheriException {
		t.Fatalf("mcause=%#x, want CHERI exception", e.Proc.MCause())
	}
	wantMtval := (uint32(1) << 5) | uint32(capability.FaultBoundsViolation)
	if e.Proc.MTval() != wantMtval {
		t.Fatalf("mtval=%#x, want %#x", e.Proc.MTval(), wantMtval)
	}
	if e.Proc.MEPCC.Address != 0x100 {
		t.Fatalf("mepcc.address=%#x, want 0x100", e.Proc.MEPCC.Address)
	}
}

// TestLoadCapabilityLosesLoadMutable mirrors the "load a capability, lose
// LoadMutable and Global when the authority lacks them" scenario.
func TestLoadCapabilityLosesLoadMutable(t *testing.T) {
	e := newTestEngine(0x0010_0000)

	var root capability.Cap
	root.ResetMemoryRoot()

	stored := root
	stored.SetAddress(0x8000)
	word := uint64(stored.Address) | uint64(stored.Compress())<<32
	if err := e.Mem.Memory().StoreCapability(0x8000, word, true); err != nil {
		t.Fatal(err)
	}

	loadAuthority := root
	loadAuthority.SetAddress(0x8000)
	loadAuthority.Permissions &^= capability.PermLoadMutable | capability.PermGlobal | capability.PermLoadGlobal
	e.Proc.SetGPR(1, loadAuthority)

	e.Proc.PCC.SetAddress(0x100)
	if err := e.Mem.Memory().StoreUint(0x100, 4, uint64(encodeI(opCheri, 3, cheriF3CLc, 1, 0))); err != nil {
		t.Fatal(err)
	}
	if !e.Step() {
		t.Fatalf("unexpected fault: mcause=%#x mtval=%#x", e.Proc.MCause(), e.Proc.MTval())
	}

	loaded := e.Proc.GPR(3)
	if !loaded.Tag {
		t.Fatalf("expected loaded capability to still be tagged")
	}
	if loaded.Permissions.Has(capability.PermLoadMutable) || loaded.Permissions.Has(capability.PermStore) {
		t.Fatalf("expected Store/LoadMutable cleared, got %#x", loaded.Permissions)
	}
	if loaded.Permissions.Has(capability.PermGlobal) {
		t.Fatalf("expected Global cleared")
	}
}

// TestSealThenUnsealData mirrors the "seal then unseal a data capability"
// scenario.
func TestSealThenUnsealData(t *testing.T) {
	var target capability.Cap
	target.ResetMemoryRoot()

	var authority capability.Cap
	authority.ResetSealingRoot()
	authority.SetAddress(10)

	if f := capability.Seal(&target, &authority, 10); f != capability.FaultNone {
		t.Fatalf("seal failed: %v", f)
	}
	if target.ObjectType != 10 || !target.Tag {
		t.Fatalf("got otype=%d tag=%v, want 10/true", target.ObjectType, target.Tag)
	}

	if f := capability.Unseal(&target, &authority, 10); f != capability.FaultNone {
		t.Fatalf("unseal failed: %v", f)
	}
	if target.ObjectType != 0 || !target.Tag {
		t.Fatalf("got otype=%d tag=%v after unseal, want 0/true", target.ObjectType, target.Tag)
	}
}

// TestCJalrBackwardSentry mirrors the "CJalr through an executable
// capability builds a backward sentry link" scenario, with mstatus.mie set
// so the link is the interrupt-enabling variant.
func TestCJalrBackwardSentry(t *testing.T) {
	e := newTestEngine(0x10000)
	e.setMIEviaCSR(true)

	var callee capability.Cap
	callee.ResetExecuteRoot()
	callee.SetAddress(0x2000)
	e.Proc.SetGPR(1, callee)

	e.Proc.PCC.SetAddress(0x100)
	if err := e.Mem.Memory().StoreUint(0x100, 4, uint64(encodeI(opJALR, 1, 0, 1, 0))); err != nil {
		t.Fatal(err)
	}

	if !e.Step() {
		t.Fatalf("unexpected fault")
	}

	if e.Proc.PCC.Address != 0x2000 {
		t.Fatalf("pcc.address=%#x, want 0x2000", e.Proc.PCC.Address)
	}
	link := e.Proc.GPR(1)
	if link.ObjectType != capability.OTypeSentryInterruptEnablingBwd {
		t.Fatalf("link otype=%d, want InterruptEnablingBackwardSentry", link.ObjectType)
	}
}
