package engine

import (
	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/state"
)

func widthFor(funct3 uint32) (size uint32, signExt bool, ok bool) {
	switch funct3 & 0x3 {
	case 0:
		size = 1
	case 1:
		size = 2
	case 2:
		size = 4
	default:
		return 0, false, false
	}
	return size, funct3&0x4 == 0, true
}

// execLoad implements integer LB/LH/LW/LBU/LHU against a GPR-held authority
// capability (spec 4.4's common load check); the authority register is rs1,
// exactly as CHERIoT's capability-relative addressing always is.
func (e *Engine) execLoad(in Inst) bool {
	pc := e.Proc.PCC.Address
	size, signExt, ok := widthFor(in.Funct3)
	if !ok {
		e.illegal()
		return false
	}
	authority := e.Proc.GPR(int(in.Rs1))
	addr := authority.Address + uint32(in.ImmI)

	if f := checkLoadStoreAuthority(&authority, addr, size, true, false); f != 0 {
		e.cheriTrap(pc, f, in.Rs1)
		return false
	}

	v, err := e.Mem.LoadWidth(addr, int(size))
	if err != nil {
		e.trap(pc, addr, state.CauseLoadAccessFault)
		return false
	}
	e.afterLoad(addr, size)
	if signExt {
		switch size {
		case 1:
			v = uint64(int64(int8(v)))
		case 2:
			v = uint64(int64(int16(v)))
		}
	}
	e.setInt(in.Rd, uint32(v))
	return true
}

// execStore implements integer SB/SH/SW against a GPR-held authority
// capability.
func (e *Engine) execStore(in Inst) bool {
	pc := e.Proc.PCC.Address
	var size uint32
	switch in.Funct3 {
	case 0:
		size = 1
	case 1:
		size = 2
	case 2:
		size = 4
	default:
		e.illegal()
		return false
	}
	authority := e.Proc.GPR(int(in.Rs1))
	addr := authority.Address + uint32(in.ImmS)

	if f := checkLoadStoreAuthority(&authority, addr, size, false, true); f != 0 {
		e.cheriTrap(pc, f, in.Rs1)
		return false
	}

	v := uint64(e.intOf(in.Rs2))
	if err := e.Mem.StoreWidth(addr, int(size), v); err != nil {
		e.trap(pc, addr, state.CauseStoreAccessFault)
		return false
	}
	e.Proc.OnStore(addr)
	e.afterStore(addr, size, v)
	return true
}

// execCLc implements capability load with the attenuation rules of spec
// 4.4 (authority must grant LoadStoreCapability; Global/LoadMutable
// attenuation; revocation-bitmap consultation).
func (e *Engine) execCLc(in Inst) bool {
	pc := e.Proc.PCC.Address
	authority := e.Proc.GPR(int(in.Rs1))
	addr := authority.Address + uint32(in.ImmI)

	if f := checkLoadStoreAuthority(&authority, addr, 8, true, false); f != 0 {
		e.cheriTrap(pc, f, in.Rs1)
		return false
	}
	if addr%8 != 0 {
		e.trap(pc, addr, state.CauseLoadAddressMisaligned)
		return false
	}
	if !authority.Permissions.Has(capability.PermLoadStoreCapability) {
		e.cheriTrap(pc, capability.FaultPermitLoadCapViolation, in.Rs1)
		return false
	}

	word, tag, err := e.Mem.Memory().LoadCapability(addr)
	if err != nil {
		e.trap(pc, addr, state.CauseLoadAccessFault)
		return false
	}
	e.afterLoad(addr, 8)
	loaded := capability.Expand(uint32(word), uint32(word>>32), tag)
	if tag {
		if !authority.Permissions.Has(capability.PermLoadGlobal) {
			loaded.Permissions &^= capability.PermGlobal
			if loaded.IsUnsealed() {
				loaded.Permissions &^= capability.PermLoadGlobal
			}
		}
		if !authority.Permissions.Has(capability.PermLoadMutable) && loaded.IsUnsealed() {
			loaded.Permissions &^= capability.PermStore | capability.PermLoadMutable
		}
		if loaded.ObjectType < capability.OTypeDataSealedMin && e.revocationLookup != nil {
			if e.revocationLookup(loaded.Base()) {
				loaded.Tag = false
			}
		}
	}
	e.Proc.SetGPR(int(in.Rd), loaded)
	return true
}

// execCSc implements capability store with the store-local attenuation
// rule of spec 4.4.
func (e *Engine) execCSc(in Inst) bool {
	pc := e.Proc.PCC.Address
	authority := e.Proc.GPR(int(in.Rs1))
	addr := authority.Address + uint32(in.ImmS)

	if f := checkLoadStoreAuthority(&authority, addr, 8, false, true); f != 0 {
		e.cheriTrap(pc, f, in.Rs1)
		return false
	}
	if addr%8 != 0 {
		e.trap(pc, addr, state.CauseStoreAddressMisaligned)
		return false
	}
	if !authority.Permissions.Has(capability.PermLoadStoreCapability) {
		e.cheriTrap(pc, capability.FaultPermitStoreCapViolation, in.Rs1)
		return false
	}

	value := e.Proc.GPR(int(in.Rs2))
	storeTag := value.Tag
	if storeTag && !authority.Permissions.Has(capability.PermStoreLocalCapability) {
		isBackwardSentry := value.ObjectType == capability.OTypeSentryInterruptEnablingBwd ||
			value.ObjectType == capability.OTypeSentryInterruptDisablingBwd
		if !value.Permissions.Has(capability.PermGlobal) || isBackwardSentry {
			storeTag = false
		}
	}

	compressed := value.Compress()
	word := uint64(value.Address) | uint64(compressed)<<32
	if err := e.Mem.Memory().StoreCapability(addr, word, storeTag); err != nil {
		e.trap(pc, addr, state.CauseStoreAccessFault)
		return false
	}
	e.Proc.OnStore(addr)
	e.afterStore(addr, 8, uint64(value.Address))
	return true
}
