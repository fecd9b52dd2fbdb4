package revoke

import (
	"testing"

	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/memory"
)

// TestIbexRevokerSweep mirrors the literal scenario of a 32-capability
// sweep where only the capability whose base matches a single set
// revocation bit is invalidated, and epoch/status track completion.
func TestIbexRevokerSweep(t *testing.T) {
	const (
		slotsBase = 0x1000 // where the 32 capability slots live
		heapBase  = 0x4000 // where the capabilities' bases point
		bitsBase  = 0x6000 // revocation bitmap storage
		heapSize  = 0x40000
	)
	mem := memory.New(0x46000)
	bitmap := NewBitmap(mem, bitsBase, heapBase, heapSize)

	const heapGranule = 0x1000
	for i := uint32(0); i < 32; i++ {
		var c capability.Cap
		c.ResetMemoryRoot()
		base := uint32(heapBase) + i*heapGranule
		c.SetBounds(uint64(base), 0x100)
		c.SetAddress(base)
		addr := uint32(slotsBase) + i*8
		word := uint64(c.Address) | uint64(c.Compress())<<32
		if err := mem.StoreCapability(addr, word, true); err != nil {
			t.Fatal(err)
		}
	}

	revokedBase := uint32(heapBase) + 4*heapGranule
	if err := bitmap.SetBit(revokedBase, true); err != nil {
		t.Fatal(err)
	}

	irqEvents := 0
	r := NewIbexRevoker(mem, bitmap, 1, func(v bool) {
		if v {
			irqEvents++
		}
	})
	r.write(OffsetStartAddress, slotsBase)
	r.write(OffsetEndAddress, slotsBase+32*8)
	r.write(OffsetInterruptEnable, 1)
	r.write(OffsetGo, 1)

	// The sweep advances one capability slot per tick and only declares
	// completion once the swept address reaches end_address; since the
	// last in-range slot (index 31) sits one slot short of that, a 33rd
	// tick beyond the boundary is what actually observes completion.
	r.OnCycle(33)

	if r.sweepInProgress {
		t.Fatalf("expected sweep to have completed")
	}
	if r.epoch != 33 {
		t.Fatalf("epoch=%d, want 33", r.epoch)
	}
	if irqEvents != 1 {
		t.Fatalf("irqEvents=%d, want 1", irqEvents)
	}
	if r.read(OffsetStatus) == 0 {
		t.Fatalf("expected status asserted with interrupt enabled")
	}

	for i := uint32(0); i < 32; i++ {
		addr := uint32(slotsBase) + i*8
		_, tag, err := mem.LoadCapability(addr)
		if err != nil {
			t.Fatal(err)
		}
		if i == 4 {
			if tag {
				t.Fatalf("capability %d expected revoked (tag cleared)", i)
			}
		} else if !tag {
			t.Fatalf("capability %d unexpectedly revoked", i)
		}
	}

	r.write(OffsetStatus, 0)
	if r.read(OffsetStatus) != 0 {
		t.Fatalf("expected status cleared after write")
	}
}

func TestIbexRevokerGoReadSentinel(t *testing.T) {
	mem := memory.New(0x1000)
	bitmap := NewBitmap(mem, 0x800, 0, 0x800)
	r := NewIbexRevoker(mem, bitmap, 1, nil)
	r.write(OffsetGo, 0xFF)
	got := r.read(OffsetGo)
	want := uint32(goReadSentinel | 0xFF)
	if got != want {
		t.Fatalf("go read=%#x, want %#x", got, want)
	}
}
