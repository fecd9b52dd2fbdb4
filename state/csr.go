package state

// Standard RISC-V and CHERIoT-specific CSR addresses, taken from the
// CHERIoT CSR numbering (original_source/cheriot/riscv_cheriot_csr_enum.h)
// so mtval/csr traps line up with the architecture this core models.
const (
	CSRFflags = 0x001
	CSRFrm    = 0x002
	CSRFCsr   = 0x003

	CSRCycle    = 0xc00
	CSRTime     = 0xc01
	CSRInstret  = 0xc02
	CSRCycleH   = 0xc80
	CSRInstretH = 0xc82

	CSRMStatus = 0x300
	CSRMIsa    = 0x301
	CSRMIe     = 0x304
	CSRMTvec   = 0x305

	CSRMScratch = 0x340
	CSRMEpc     = 0x341
	CSRMCause   = 0x342
	CSRMTval    = 0x343
	CSRMIp      = 0x344

	CSRMCycle    = 0xb00
	CSRMInstret  = 0xb02
	CSRMCycleH   = 0xb80
	CSRMInstretH = 0xb82

	CSRMHartID = 0xf14

	CSRMCcsr  = 0xbc0
	CSRMshwm  = 0xbc1
	CSRMshwmb = 0xbc2

	hpmcounterBase  = 0xb03
	hpmcounterHBase = 0xb83
	hpmcounterCount = 29 // counters 3..31
)

// mstatus bit layout (subset CHERIoT cares about).
const (
	mstatusMIE  uint32 = 1 << 3
	mstatusMPIE uint32 = 1 << 7
	mstatusMPP  uint32 = 0x3 << 11
)

const mppMachine uint32 = 0x3 << 11

// mip/mie bit layout.
const (
	IRQMachineSoftware uint32 = 1 << 3
	IRQMachineTimer    uint32 = 1 << 7
	IRQMachineExternal uint32 = 1 << 11
)

type csrDef struct {
	readMask  uint32
	writeMask uint32
	initial   uint32
}

// CSRFile is the standard RISC-V CSR bank, restricted to the CHERIoT subset
// (spec 3.3): each CSR carries read/write masks and an initial value,
// exactly as the teacher's memory key bytes are masked on access.
type CSRFile struct {
	defs   map[uint16]csrDef
	values map[uint16]uint32
}

func newCSRFile() CSRFile {
	f := CSRFile{
		defs:   make(map[uint16]csrDef),
		values: make(map[uint16]uint32),
	}
	reg := func(addr uint16, readMask, writeMask, initial uint32) {
		f.defs[addr] = csrDef{readMask: readMask, writeMask: writeMask, initial: initial}
		f.values[addr] = initial
	}

	reg(CSRMStatus, mstatusMIE|mstatusMPIE|mstatusMPP, mstatusMIE, 0)
	reg(CSRMIsa, 0xFFFFFFFF, 0, (1<<8)|(1<<30)) // RV32I, report machine-only
	reg(CSRMIe, IRQMachineSoftware|IRQMachineTimer|IRQMachineExternal, IRQMachineSoftware|IRQMachineTimer|IRQMachineExternal, 0)
	reg(CSRMIp, IRQMachineSoftware|IRQMachineTimer|IRQMachineExternal, 0, 0)
	reg(CSRMTvec, 0xFFFFFFFF, 0xFFFFFFFF, 0)
	reg(CSRMScratch, 0xFFFFFFFF, 0xFFFFFFFF, 0)
	reg(CSRMEpc, 0xFFFFFFFF, 0xFFFFFFFF, 0)
	reg(CSRMCause, 0xFFFFFFFF, 0xFFFFFFFF, 0)
	reg(CSRMTval, 0xFFFFFFFF, 0xFFFFFFFF, 0)
	reg(CSRMHartID, 0xFFFFFFFF, 0, 0)
	reg(CSRMCcsr, 0x1, 0x1, 1) // bit0: capability extension present
	reg(CSRFflags, 0, 0, 0)
	reg(CSRFrm, 0, 0, 0)
	reg(CSRFCsr, 0, 0, 0)

	for i := 0; i < hpmcounterCount; i++ {
		reg(uint16(hpmcounterBase+i), 0xFFFFFFFF, 0, 0)
		reg(uint16(hpmcounterHBase+i), 0xFFFFFFFF, 0, 0)
	}

	return f
}

// userWhitelisted reports whether addr is a CSR accessible from below machine mode
// without AccessSystemRegisters, per spec 4.4: fflags/frm/fcsr and the
// cycle/instret/hpmcounter* read-only counters.
func userWhitelisted(addr uint16) bool {
	switch addr {
	case CSRFflags, CSRFrm, CSRFCsr, CSRCycle, CSRTime, CSRInstret, CSRCycleH, CSRInstretH:
		return true
	}
	if addr >= 0xc03 && addr <= 0xc1f { // user hpmcounter3..31
		return true
	}
	return false
}

// supervisorRange reports whether addr falls in the RISC-V supervisor CSR
// range, which CHERIoT forbids entirely (spec 4.4).
func supervisorRange(addr uint16) bool {
	return addr >= 0x100 && addr < 0x200
}
