package engine

import (
	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/state"
)

// intOf reads a GPR as a plain 32-bit integer: its address component,
// independent of tag (the pure-capability ABI uses capability registers to
// hold scratch integers too).
func (e *Engine) intOf(n uint32) uint32 { return e.Proc.GPR(int(n)).Address }

// setInt writes a non-capability (tag=false) result into rd.
func (e *Engine) setInt(n uint32, v uint32) {
	e.Proc.SetGPR(int(n), capability.Cap{Address: v})
}

func (e *Engine) execOp(in Inst) bool {
	a, b := e.intOf(in.Rs1), e.intOf(in.Rs2)
	var r uint32
	switch {
	case in.Funct3 == 0x0 && in.Funct7 == 0x00:
		r = a + b
	case in.Funct3 == 0x0 && in.Funct7 == 0x20:
		r = a - b
	case in.Funct3 == 0x1:
		r = a << (b & 0x1F)
	case in.Funct3 == 0x2:
		r = boolToU32(int32(a) < int32(b))
	case in.Funct3 == 0x3:
		r = boolToU32(a < b)
	case in.Funct3 == 0x4:
		r = a ^ b
	case in.Funct3 == 0x5 && in.Funct7 == 0x00:
		r = a >> (b & 0x1F)
	case in.Funct3 == 0x5 && in.Funct7 == 0x20:
		r = uint32(int32(a) >> (b & 0x1F))
	case in.Funct3 == 0x6:
		r = a | b
	case in.Funct3 == 0x7:
		r = a & b
	// M extension
	case in.Funct3 == 0x0 && in.Funct7 == 0x01:
		r = a * b
	case in.Funct3 == 0x4 && in.Funct7 == 0x01:
		if b == 0 {
			r = 0xFFFF_FFFF
		} else {
			r = uint32(int32(a) / int32(b))
		}
	case in.Funct3 == 0x5 && in.Funct7 == 0x01:
		if b == 0 {
			r = 0xFFFF_FFFF
		} else {
			r = a / b
		}
	case in.Funct3 == 0x6 && in.Funct7 == 0x01:
		if b == 0 {
			r = a
		} else {
			r = uint32(int32(a) % int32(b))
		}
	case in.Funct3 == 0x7 && in.Funct7 == 0x01:
		if b == 0 {
			r = a
		} else {
			r = a % b
		}
	default:
		e.illegal()
		return false
	}
	e.setInt(in.Rd, r)
	return true
}

func (e *Engine) execOpImm(in Inst) bool {
	a := e.intOf(in.Rs1)
	imm := uint32(in.ImmI)
	var r uint32
	switch in.Funct3 {
	case 0x0:
		r = a + imm
	case 0x2:
		r = boolToU32(int32(a) < in.ImmI)
	case 0x3:
		r = boolToU32(a < imm)
	case 0x4:
		r = a ^ imm
	case 0x6:
		r = a | imm
	case 0x7:
		r = a & imm
	case 0x1:
		r = a << (in.Rs2 & 0x1F)
	case 0x5:
		if in.Funct7 == 0x20 {
			r = uint32(int32(a) >> (in.Rs2 & 0x1F))
		} else {
			r = a >> (in.Rs2 & 0x1F)
		}
	default:
		e.illegal()
		return false
	}
	e.setInt(in.Rd, r)
	return true
}

func boolToU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// execLUI implements the plain (non-capability) upper-immediate load: a
// scratch integer, tag=false.
func (e *Engine) execLUI(in Inst) bool {
	e.setInt(in.Rd, uint32(in.ImmU))
	return true
}

func (e *Engine) execBranch(in Inst) bool {
	a, b := e.intOf(in.Rs1), e.intOf(in.Rs2)
	var taken bool
	switch in.Funct3 {
	case 0x0:
		taken = a == b
	case 0x1:
		taken = a != b
	case 0x4:
		taken = int32(a) < int32(b)
	case 0x5:
		taken = int32(a) >= int32(b)
	case 0x6:
		taken = a < b
	case 0x7:
		taken = a >= b
	default:
		e.illegal()
		return false
	}
	if taken {
		target := e.Proc.PCC.Address + uint32(in.ImmB)
		if target&1 != 0 {
			e.trap(e.Proc.PCC.Address, target, state.CauseInstructionAddressMisaligned)
			return false
		}
		e.Proc.PCC.SetAddress(target)
		return true
	}
	e.Proc.PCC.SetAddress(e.Proc.PCC.Address + instSize)
	return true
}

func (e *Engine) illegal() {
	pc := e.Proc.PCC.Address
	e.trap(pc, 0, state.CauseIllegalInstruction)
}
