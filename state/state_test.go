package state

import "testing"

func TestMSHWMDecrement(t *testing.T) {
	p := NewProcessor()
	p.MSHWMB = 0
	p.MSHWM = 0x8000_0000

	p.OnStore(0x7FFF_FFFF)

	if p.MSHWM != 0x7FFF_FFF0 {
		t.Fatalf("got mshwm=%#x, want 0x7FFFFFF0", p.MSHWM)
	}
}

func TestMSHWMMonotonic(t *testing.T) {
	p := NewProcessor()
	p.MSHWMB = 0x1000
	p.MSHWM = 0x9000

	for _, addr := range []uint32{0x8500, 0x8100, 0x8800} {
		p.OnStore(addr)
	}
	if p.MSHWM != 0x8100 {
		t.Fatalf("got %#x, want minimum aligned store address 0x8100", p.MSHWM)
	}
	if p.MSHWM < p.MSHWMB {
		t.Fatalf("mshwm must stay >= mshwmb")
	}
}

func TestTrapEntrySequence(t *testing.T) {
	p := NewProcessor()
	p.MTCC.Address = 0x1000
	p.setMIE(true)

	p.PCC.Address = 0x100
	p.Trap(false, 0x55, CauseIllegalInstruction, 0x100)

	if p.MEPCC.Address != 0x100 {
		t.Fatalf("mepcc.address = %#x, want 0x100", p.MEPCC.Address)
	}
	if p.MCause() != CauseIllegalInstruction {
		t.Fatalf("mcause = %#x", p.MCause())
	}
	if p.MIE() {
		t.Fatalf("mstatus.mie must be cleared on trap entry")
	}
	if p.PCC.Address != 0x1000 {
		t.Fatalf("pcc.address = %#x, want mtcc base 0x1000", p.PCC.Address)
	}
	if p.MTval() != 0x55 {
		t.Fatalf("mtval = %#x", p.MTval())
	}
}
