package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cheriot-sim/cheriot/capability"
)

// DebugInterface is the collapsed "CoreDebugInterface" of spec 9: instead
// of separate CLI-top/ReNode-top forwarding wrappers, this single interface
// lists the debug operations *Engine provides. The debug shell and the
// host bridge stub use the concrete *Engine, which also has methods outside
// this interface.
type DebugInterface interface {
	Halt()
	StepN(n int)
	Run()
	Wait()
	RunStatus() RunState
	LastHaltReason() HaltReason

	ReadRegister(name string) (uint64, error)
	WriteRegister(name string, v uint64) error

	ReadMemory(addr uint32, n int) ([]byte, error)
	WriteMemory(addr uint32, data []byte) error
	ReadTagMemory(addr uint32, n uint32) []bool

	HasBreakpoint(addr uint32) bool
	SetSWBreakpoint(addr uint32) error
	ClearSWBreakpoint(addr uint32) error
	ClearAllSWBreakpoints()

	SetDataWatchpoint(addr, length uint32, kind WatchKind)
	ClearDataWatchpoint(addr uint32)

	SetBreakOnControlFlowChange(bool)
	GetInstruction(addr uint32) (uint32, error)
}

var _ DebugInterface = (*Engine)(nil)

// gprIndexByName resolves a register name to a GPR index, accepting x0..x31,
// c0..c31, and the standard RISC-V ABI aliases.
func gprIndexByName(name string) (int, bool) {
	aliases := map[string]int{
		"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
		"t0": 5, "t1": 6, "t2": 7, "fp": 8, "s0": 8, "s1": 9,
		"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
		"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25,
		"s10": 26, "s11": 27, "t3": 28, "t4": 29, "t5": 30, "t6": 31,
	}
	if n, ok := aliases[name]; ok {
		return n, true
	}
	for _, prefix := range []string{"x", "c"} {
		if strings.HasPrefix(name, prefix) {
			if n, err := strconv.Atoi(name[len(prefix):]); err == nil && n >= 0 && n < 32 {
				return n, true
			}
		}
	}
	return -1, false
}

// ReadRegister implements spec 6's read_register, including the dotted
// capability-component suffixes (.tag, .base, .top, .length, .permissions,
// .object_type, .reserved) and the $branch_trace_head/$branch_trace_size
// pseudo-registers; the trace ring itself is read via BranchTraceSnapshot.
func (e *Engine) ReadRegister(name string) (uint64, error) {
	switch name {
	case "pc", "pcc":
		return uint64(e.Proc.PCC.Address), nil
	case "mtcc":
		return uint64(e.Proc.MTCC.Address), nil
	case "mepcc":
		return uint64(e.Proc.MEPCC.Address), nil
	case "mtdc":
		return uint64(e.Proc.MTDC.Address), nil
	case "mscratchc":
		return uint64(e.Proc.MScratchC.Address), nil
	case "mcycle", "cycle":
		return e.Proc.Cycle(), nil
	case "minstret", "instret":
		return e.Proc.Instret(), nil
	case "$branch_trace_head":
		return uint64(e.debug.trace.Head()), nil
	case "$branch_trace_size":
		return uint64(e.debug.trace.Size()), nil
	}

	base, field, hasField := strings.Cut(name, ".")
	if idx, ok := gprIndexByName(base); ok {
		c := e.Proc.GPR(idx)
		if !hasField {
			return uint64(c.Address), nil
		}
		return capabilityField(&c, field)
	}
	return 0, fmt.Errorf("engine: unknown register %q", name)
}

func capabilityField(c *capability.Cap, field string) (uint64, error) {
	switch field {
	case "tag":
		return boolToU64(c.Tag), nil
	case "base":
		return uint64(c.Base()), nil
	case "top":
		return uint64(c.Top()), nil
	case "length":
		return uint64(c.Len32()), nil
	case "permissions":
		return uint64(c.Permissions), nil
	case "object_type":
		return uint64(c.ObjectType), nil
	case "reserved":
		return boolToU64(c.Reserved), nil
	default:
		return 0, fmt.Errorf("engine: unknown capability field %q", field)
	}
}

func boolToU64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// WriteRegister implements spec 6's write_register. Writing a bare GPR name
// sets its address, preserving the rest of the capability (matching the
// debug shell's typical "poke an integer" use); dotted suffixes are
// read-only introspection and are rejected.
func (e *Engine) WriteRegister(name string, v uint64) error {
	switch name {
	case "pc", "pcc":
		e.Proc.PCC.SetAddress(uint32(v))
		return nil
	case "mcycle", "cycle":
		return e.Proc.WriteCSR(0xB00, uint32(v), true)
	}
	if idx, ok := gprIndexByName(name); ok {
		c := e.Proc.GPR(idx)
		c.SetAddress(uint32(v))
		e.Proc.SetGPR(idx, c)
		return nil
	}
	return fmt.Errorf("engine: unknown or read-only register %q", name)
}

// GetRegisterDataBuffer returns the register's 8-byte memory image, the
// 32-bit address word followed by the 32-bit compressed capability word,
// the "data buffer" transfer object spec 9
// recommends in place of the source's reference-counted buffer.
func (e *Engine) GetRegisterDataBuffer(name string) ([8]byte, error) {
	idx, ok := gprIndexByName(name)
	if !ok {
		return [8]byte{}, fmt.Errorf("engine: unknown register %q", name)
	}
	c := e.Proc.GPR(idx)
	var out [8]byte
	v := c.Address
	for i := 0; i < 4; i++ {
		out[i] = byte(v)
		v >>= 8
	}
	compressed := c.Compress()
	for i := 0; i < 4; i++ {
		out[4+i] = byte(compressed)
		compressed >>= 8
	}
	return out, nil
}

func (e *Engine) ReadMemory(addr uint32, n int) ([]byte, error) {
	return e.Mem.Memory().Load(addr, n)
}

func (e *Engine) WriteMemory(addr uint32, data []byte) error {
	return e.Mem.Memory().Store(addr, data)
}

func (e *Engine) ReadTagMemory(addr uint32, n uint32) []bool {
	return e.Mem.Memory().ReadTagRange(addr, n)
}

// GetInstruction returns the raw instruction word at addr without
// affecting fetch-authority checks (a debug peek, not a guest fetch).
func (e *Engine) GetInstruction(addr uint32) (uint32, error) {
	v, err := e.Mem.Memory().LoadUint(addr, 4)
	return uint32(v), err
}

// GetDisassembly returns a best-effort mnemonic for the instruction at
// addr; full disassembly is surrounding functionality (spec 1's
// out-of-scope list), so this only decodes the opcode/fields enough for a
// debug shell listing.
func (e *Engine) GetDisassembly(addr uint32) (string, error) {
	raw, err := e.GetInstruction(addr)
	if err != nil {
		return "", err
	}
	in := decode(raw)
	return fmt.Sprintf("op=%#02x rd=%d rs1=%d rs2=%d funct3=%d funct7=%#x",
		in.Opcode, in.Rd, in.Rs1, in.Rs2, in.Funct3, in.Funct7), nil
}

// BranchTraceSnapshot exposes the $branch_trace pseudo-register's contents.
func (e *Engine) BranchTraceSnapshot() []branchEdge {
	return e.debug.trace.Snapshot()
}
