package capability

import "testing"

func TestRoundtrip(t *testing.T) {
	var root Cap
	root.ResetMemoryRoot()
	root.SetBounds(0x8000_0000, 0x1000)
	root.Address = 0x8000_0010

	word := root.Compress()
	got := Expand(root.Address, word, root.Tag)

	if got.Address != root.Address || got.Base() != root.Base() || got.Top() != root.Top() {
		t.Fatalf("roundtrip mismatch: got base=%#x top=%#x addr=%#x, want base=%#x top=%#x addr=%#x",
			got.Base(), got.Top(), got.Address, root.Base(), root.Top(), root.Address)
	}
	if got.Permissions != root.Permissions {
		t.Fatalf("permission roundtrip mismatch: got %#x want %#x", got.Permissions, root.Permissions)
	}
	if got.ObjectType != root.ObjectType || got.Reserved != root.Reserved || got.Tag != root.Tag {
		t.Fatalf("field roundtrip mismatch")
	}
}

func TestSetBoundsMonotonic(t *testing.T) {
	var root Cap
	root.ResetMemoryRoot()
	exact := root.SetBounds(0x8000_0123, 0x777)

	base, top := root.ComputeBounds()
	if uint64(base) > 0x8000_0123 {
		t.Fatalf("base %#x rounded inward, want <= req", base)
	}
	if uint64(top) < 0x8000_0123+0x777 {
		t.Fatalf("top %#x rounded inward, want >= req top", top)
	}
	if exact {
		t.Fatalf("expected inexact rounding for unaligned request")
	}
}

func TestSetBoundsExactWhenAligned(t *testing.T) {
	var root Cap
	root.ResetMemoryRoot()
	exact := root.SetBounds(0x8000_0000, 0x1000)
	if !exact {
		t.Fatalf("expected exact rounding for power-of-two aligned request")
	}
}

func TestNullIdempotence(t *testing.T) {
	var c Cap
	c.Address = 0x1234
	c.ResetNull()

	if c.Tag {
		t.Fatalf("null capability must be untagged")
	}
	if c.Base() != 0 || c.Top() != 0 || c.Permissions != 0 || c.ObjectType != 0 {
		t.Fatalf("null capability must read zero for all fields but address")
	}
	if c.Address != 0x1234 {
		t.Fatalf("ResetNull must preserve address")
	}
}

func TestClearPermissionsOnlyRemoves(t *testing.T) {
	var root Cap
	root.ResetMemoryRoot()
	before := root.Permissions

	root.ClearPermissions(PermStore)
	if root.Permissions&^before != 0 {
		t.Fatalf("ClearPermissions must not add bits")
	}
	if root.Permissions.Has(PermStore) {
		t.Fatalf("Store should have been cleared")
	}
}

func TestSealUnsealRoundTrip(t *testing.T) {
	var target Cap
	target.ResetMemoryRoot()
	target.Address = 0x8000_0000
	target.SetBounds(0x8000_0000, 0x100)

	var authority Cap
	authority.ResetSealingRoot()
	authority.Address = 10

	if f := Seal(&target, &authority, 10); f != FaultNone {
		t.Fatalf("seal failed: %v", f)
	}
	if target.ObjectType != 10 || !target.Tag {
		t.Fatalf("seal did not apply otype: %+v", target)
	}

	if f := Unseal(&target, &authority, 10); f != FaultNone {
		t.Fatalf("unseal failed: %v", f)
	}
	if target.ObjectType != OTypeUnsealed || !target.Tag {
		t.Fatalf("unseal did not clear otype: %+v", target)
	}
}

func TestSetAddressRepresentability(t *testing.T) {
	var c Cap
	c.ResetMemoryRoot()
	c.Address = 0x1000
	c.SetBounds(0x1000, 0x10)
	c.SetAddress(0x1_0000_0000 - 1) // wildly out of representable window
	if c.Tag {
		t.Fatalf("expected tag cleared for non-representable address")
	}
}
