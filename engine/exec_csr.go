package engine

import (
	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/state"
)

// execSystemCSR implements Csrrw/Csrrs/Csrrc and their immediate forms
// (spec 4.4's CSR instructions), enforcing the privilege rules of
// state.CSRFile via ReadCSR/WriteCSR.
func (e *Engine) execSystemCSR(in Inst) bool {
	csr := uint16(in.ImmI) & 0xFFF
	hasASR := e.hasAccessSystemRegisters()

	useImm := in.Funct3&0x4 != 0
	var writeVal uint32
	if useImm {
		writeVal = in.Rs1
	} else {
		writeVal = e.intOf(in.Rs1)
	}
	op := in.Funct3 & 0x3

	old, err := e.Proc.ReadCSR(csr, hasASR)
	if err != nil {
		e.illegal()
		return false
	}
	if in.Rd != 0 {
		e.setInt(in.Rd, old)
	}

	// Csrrs/Csrrc with a zero operand (rs1==x0, or a zero immediate) are
	// defined as read-only and must not attempt the privileged write path.
	if (op == 0x2 || op == 0x3) && writeVal == 0 {
		return true
	}

	var newVal uint32
	switch op {
	case 0x1:
		newVal = writeVal
	case 0x2:
		newVal = old | writeVal
	case 0x3:
		newVal = old &^ writeVal
	default:
		e.illegal()
		return false
	}
	if err := e.Proc.WriteCSR(csr, newVal, hasASR); err != nil {
		e.illegal()
		return false
	}
	return true
}

// sanitizeVectorCap implements spec 4.4's mtcc/mepcc write sanitization:
// clear the low two address bits, and invalidate if the result is sealed or
// not executable.
func sanitizeVectorCap(c capability.Cap) capability.Cap {
	c.SetAddress(c.Address &^ 0x3)
	if c.IsSealed() || !c.Permissions.Has(capability.PermExecute) {
		c.Tag = false
	}
	return c
}

// execCSpecialRW implements CSpecialRW: swap a GPR with one of the special
// capability CSRs, requiring AccessSystemRegisters (spec 4.4). rs2 selects
// the target CSR: 0=pcc (read-only), 1=mtcc, 2=mtdc, 3=mepcc, 4=mscratchc.
func (e *Engine) execCSpecialRW(in Inst) bool {
	pc := e.Proc.PCC.Address
	if !e.hasAccessSystemRegisters() {
		e.cheriTrap(pc, capability.FaultPermitAccessSystemRegistersViolation, 0)
		return false
	}

	newVal := e.Proc.GPR(int(in.Rs1))
	var old capability.Cap
	switch in.Rs2 {
	case 0:
		old = e.Proc.PCC
	case 1:
		old = e.Proc.MTCC
		e.Proc.MTCC = sanitizeVectorCap(newVal)
	case 2:
		old = e.Proc.MTDC
		e.Proc.MTDC = newVal
	case 3:
		old = e.Proc.MEPCC
		e.Proc.MEPCC = sanitizeVectorCap(newVal)
	case 4:
		old = e.Proc.MScratchC
		e.Proc.MScratchC = newVal
	default:
		e.illegal()
		return false
	}
	e.Proc.SetGPR(int(in.Rd), old)
	return true
}

func (e *Engine) execSystem(in Inst) bool {
	pc := e.Proc.PCC.Address
	if in.Funct3 != 0 {
		return e.execSystemCSR(in)
	}
	switch in.ImmI {
	case 0x000: // ECALL
		e.trap(pc, 0, state.CauseEnvCallFromMMode)
		return false
	case 0x001: // EBREAK
		e.onEBreak(pc)
		return false
	case 0x302: // MRET
		e.execMRET()
		return true
	case 0x105: // WFI
		return true
	default:
		e.illegal()
		return false
	}
}

func (e *Engine) execMRET() {
	e.Proc.PCC = e.Proc.MEPCC
}
