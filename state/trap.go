package state

import "github.com/cheriot-sim/cheriot/capability"

// Standard RISC-V trap cause codes CHERIoT uses (spec 7), plus the single
// CHERI exception code 28.
const (
	CauseInstructionAddressMisaligned uint32 = 0
	CauseIllegalInstruction           uint32 = 2
	CauseLoadAddressMisaligned        uint32 = 4
	CauseLoadAccessFault              uint32 = 5
	CauseStoreAddressMisaligned       uint32 = 6
	CauseStoreAccessFault             uint32 = 7
	CauseEnvCallFromMMode             uint32 = 11
	CauseCheriException               uint32 = 28

	interruptBit uint32 = 1 << 31
)

// TrapLatch records a pending, enabled interrupt ready to be taken at the
// next instruction boundary (spec 4.3).
type TrapLatch struct {
	Available bool
	Code      uint32
}

// Trap implements spec 4.3's trap(is_interrupt, trap_value, code, epc)
// entry sequence.
func (p *Processor) Trap(isInterrupt bool, trapValue uint32, code uint32, epc uint32) {
	p.MEPCC = p.PCC
	p.MEPCC.Address = epc

	cause := code
	if isInterrupt {
		cause |= interruptBit
	}
	p.csrs.values[CSRMCause] = cause

	p.setMPPMachine()
	p.setMPIE(p.MIE())
	p.setMIE(false)

	// Drain pending writebacks (spec 9's delay-line note): this
	// implementation has zero latency, so there is nothing to drain.

	p.csrs.values[CSRMTval] = trapValue

	p.PCC = p.MTCC
	vectored := p.MTCC.Address&3 == 1
	base := p.MTCC.Address &^ 3
	if vectored && !isInterrupt {
		// Vectoring only applies to interrupts in the RISC-V CLIC/vectored
		// scheme this core follows; exceptions always go to the base.
		p.PCC.Address = base
	} else if vectored {
		p.PCC.Address = base + 4*code
	} else {
		p.PCC.Address = base
	}
	p.handlerDepth++
}

// regIndexByName looks up a GPR/CSR index for CHERI exception encoding.
// Unknown names report 0 (c0), matching "no offending register" rather
// than failing the trap path.
func regIndexByName(reg string) uint8 {
	names := map[string]uint8{
		"pcc": 0, "c0": 0, "c1": 1, "c2": 2, "c3": 3, "c4": 4, "c5": 5, "c6": 6, "c7": 7,
		"c8": 8, "c9": 9, "c10": 10, "c11": 11, "c12": 12, "c13": 13, "c14": 14, "c15": 15,
		"c16": 16, "c17": 17, "c18": 18, "c19": 19, "c20": 20, "c21": 21, "c22": 22, "c23": 23,
		"c24": 24, "c25": 25, "c26": 26, "c27": 27, "c28": 28, "c29": 29, "c30": 30, "c31": 31,
	}
	if v, ok := names[reg]; ok {
		return v
	}
	return 0
}

// HandleCheriRegException implements spec 4.3's
// handle_cheri_reg_exception(inst, epc, code, reg): encodes mtval as
// (cap_index<<5)|code and raises mcause=28.
func (p *Processor) HandleCheriRegException(epc uint32, code capability.Fault, reg string) {
	capIndex := regIndexByName(reg)
	mtval := (uint32(capIndex) << 5) | (uint32(code) & 0x1F)
	p.Trap(false, mtval, CauseCheriException, epc)
}

// RequestInterrupt marks an external/software/timer interrupt pending on
// the corresponding mip bit (spec 4.3's machine-external > machine-software
// > machine-timer priority order is applied in PendingInterrupt).
func (p *Processor) RequestInterrupt(bit uint32, pending bool) {
	p.SetMIPBit(bit, pending)
}

// PendingInterrupt returns the highest-priority pending-and-enabled
// interrupt code, following spec 4.3: machine-external > machine-software >
// machine-timer. Returns (0, false) when mstatus.mie is clear or nothing
// is pending.
func (p *Processor) PendingInterrupt() (code uint32, ok bool) {
	if !p.MIE() {
		return 0, false
	}
	active := p.MIP() & p.MIEBits()
	switch {
	case active&IRQMachineExternal != 0:
		return 11, true
	case active&IRQMachineSoftware != 0:
		return 3, true
	case active&IRQMachineTimer != 0:
		return 7, true
	default:
		return 0, false
	}
}
