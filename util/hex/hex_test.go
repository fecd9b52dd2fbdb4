package hex

import (
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	var b strings.Builder
	FormatBytes(&b, true, []byte{0xde, 0xad, 0xbe, 0xef})
	if got, want := b.String(), "DE AD BE EF "; got != want {
		t.Errorf("FormatBytes = %q, want %q", got, want)
	}
}

func TestFormatWord(t *testing.T) {
	var b strings.Builder
	FormatWord(&b, []uint32{0x12345678})
	if got, want := b.String(), "12345678 "; got != want {
		t.Errorf("FormatWord = %q, want %q", got, want)
	}
}

func TestASCIIGutter(t *testing.T) {
	data := []byte{'h', 'i', 0x00, 0x7f, 0x41}
	if got, want := ASCIIGutter(data), "hi..A"; got != want {
		t.Errorf("ASCIIGutter = %q, want %q", got, want)
	}
}
