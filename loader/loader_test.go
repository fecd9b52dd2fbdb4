package loader

import "testing"

func TestDecodeExitCode(t *testing.T) {
	tests := []struct {
		value    uint32
		wantCode uint32
		wantExit bool
	}{
		{0x0000_0000, 0, false},
		{0x0000_0001, 0, true},
		{0x0000_0003, 1, true},
		{0xFFFF_FFFF, 0x7FFF_FFFF, true},
		{0x0000_0064 << 1, 0x64, false},
	}
	for _, tt := range tests {
		code, exit := DecodeExitCode(tt.value)
		if code != tt.wantCode || exit != tt.wantExit {
			t.Errorf("DecodeExitCode(%#x) = (%#x, %v), want (%#x, %v)",
				tt.value, code, exit, tt.wantCode, tt.wantExit)
		}
	}
}

func TestGetFunctionNameEmpty(t *testing.T) {
	l := &ELFLoader{symbols: map[string]uint32{}}
	if _, ok := l.GetFunctionName(0x1000); ok {
		t.Errorf("expected no function name with empty symbol table")
	}
}

func TestGetFunctionNameRange(t *testing.T) {
	l := &ELFLoader{
		symbols: map[string]uint32{},
		functions: []funcSym{
			{addr: 0x1000, name: "reset_handler"},
			{addr: 0x1040, name: "main"},
			{addr: 0x2000, name: "exit"},
		},
	}
	cases := map[uint32]string{
		0x1000: "reset_handler",
		0x1020: "reset_handler",
		0x1040: "main",
		0x1fff: "main",
		0x2000: "exit",
		0x3000: "exit",
	}
	for addr, want := range cases {
		got, ok := l.GetFunctionName(addr)
		if !ok || got != want {
			t.Errorf("GetFunctionName(%#x) = (%q, %v), want %q", addr, got, ok, want)
		}
	}
	if _, ok := l.GetFunctionName(0x0FFF); ok {
		t.Errorf("expected no function below the first symbol")
	}
}

func TestGetSymbol(t *testing.T) {
	l := &ELFLoader{symbols: map[string]uint32{"tohost": 0x8000_1000}}
	addr, ok := l.GetSymbol("tohost")
	if !ok || addr != 0x8000_1000 {
		t.Errorf("GetSymbol(tohost) = (%#x, %v)", addr, ok)
	}
	if _, ok := l.GetSymbol("nonexistent"); ok {
		t.Errorf("GetSymbol should fail for unknown symbol")
	}
}
