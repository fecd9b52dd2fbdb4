package engine

import (
	"fmt"

	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/util/debug"
)

func regName(n uint32) string { return fmt.Sprintf("c%d", n) }

// cheriTrap raises the instruction's CHERI exception against reg (spec
// 4.3's handle_cheri_reg_exception); callers return false right after it
// to stop executing the instruction.
func (e *Engine) cheriTrap(epc uint32, code capability.Fault, reg uint32) {
	debug.DebugRegf(regName(reg), debug.MaskCapability, debug.LevelAll, "cheri exception %v at pc %#x", code, epc)
	e.Proc.HandleCheriRegException(epc, code, regName(reg))
}

// trap raises a standard RISC-V exception (spec 4.3's trap()).
func (e *Engine) trap(epc uint32, trapValue uint32, cause uint32) {
	e.Proc.Trap(false, trapValue, cause, epc)
}

func (e *Engine) interruptTrap(epc uint32, code uint32) {
	e.Proc.Trap(true, 0, code, epc)
}

// checkFetchAuthority implements spec 4.4's fetch-cycle capability check.
func checkFetchAuthority(pcc *capability.Cap, instSize uint32) capability.Fault {
	if !pcc.Tag {
		return capability.FaultTagViolation
	}
	if !pcc.Permissions.Has(capability.PermExecute) {
		return capability.FaultPermitExecuteViolation
	}
	addr := uint64(pcc.Address)
	if addr < uint64(pcc.Base()) || addr+uint64(instSize) > uint64(pcc.Top()) {
		return capability.FaultBoundsViolation
	}
	return capability.FaultNone
}

// checkLoadStoreAuthority implements the common load/store capability check
// of spec 4.4: tagged, unsealed, required permission, and the access must
// lie within bounds.
func checkLoadStoreAuthority(cap *capability.Cap, addr uint32, size uint32, needLoad, needStore bool) capability.Fault {
	if !cap.Tag {
		return capability.FaultTagViolation
	}
	if cap.IsSealed() {
		return capability.FaultSealViolation
	}
	if needLoad && !cap.Permissions.Has(capability.PermLoad) {
		return capability.FaultPermitLoadViolation
	}
	if needStore && !cap.Permissions.Has(capability.PermStore) {
		return capability.FaultPermitStoreViolation
	}
	a := uint64(addr)
	if a < uint64(cap.Base()) || a+uint64(size) > uint64(cap.Top()) {
		return capability.FaultBoundsViolation
	}
	return capability.FaultNone
}
