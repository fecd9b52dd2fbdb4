package memory

import "testing"

func TestCapabilityStoreSetsTag(t *testing.T) {
	m := New(0x1000)
	if err := m.StoreCapability(0x100, 0xdeadbeefcafebabe, true); err != nil {
		t.Fatalf("store: %v", err)
	}
	word, tag, err := m.LoadCapability(0x100)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !tag {
		t.Fatalf("expected tag set")
	}
	if word != 0xdeadbeefcafebabe {
		t.Fatalf("got %#x", word)
	}
}

func TestPartialStoreClearsTag(t *testing.T) {
	m := New(0x1000)
	_ = m.StoreCapability(0x100, 0x1122334455667788, true)

	if err := m.Store(0x102, []byte{0xff}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if m.TagAt(0x100) {
		t.Fatalf("partial overwrite must clear the granule tag")
	}
}

func TestPlainDoubleStoreClearsTag(t *testing.T) {
	m := New(0x1000)
	_ = m.StoreCapability(0x100, 0x1122334455667788, true)
	if err := m.Store(0x100, make([]byte, 8)); err != nil {
		t.Fatalf("store: %v", err)
	}
	if m.TagAt(0x100) {
		t.Fatalf("a plain 8-byte integer store must clear the tag")
	}
}

func TestMisalignedCapabilityAccessRejected(t *testing.T) {
	m := New(0x1000)
	if _, _, err := m.LoadCapability(0x101); err == nil {
		t.Fatalf("expected misaligned capability load to fail")
	}
}
