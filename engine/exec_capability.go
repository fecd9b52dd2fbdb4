package engine

import "github.com/cheriot-sim/cheriot/capability"

// linkSentryType picks the backward-sentry object type matching the
// caller's current interrupt-enable state (spec 4.4's CJal/CJalr link
// capability construction).
func linkSentryType(mie bool) uint8 {
	if mie {
		return capability.OTypeSentryInterruptEnablingBwd
	}
	return capability.OTypeSentryInterruptDisablingBwd
}

// makeLink builds the return-address capability CJal/CJalr write to rd:
// a copy of pcc with address set to returnPC, sealed as a backward sentry.
func (e *Engine) makeLink(returnPC uint32) capability.Cap {
	link := e.Proc.PCC
	link.SetAddress(returnPC)
	link.ObjectType = linkSentryType(e.Proc.MIE())
	return link
}

// execCJal implements a direct, pcc-relative capability call (the JAL
// opcode under the CHERIoT pure-capability ABI).
func (e *Engine) execCJal(in Inst) bool {
	target := e.Proc.PCC.Address + uint32(in.ImmJ)
	if target&1 != 0 {
		e.illegal()
		return false
	}
	returnPC := e.Proc.PCC.Address + instSize
	if in.Rd != 0 {
		e.Proc.SetGPR(int(in.Rd), e.makeLink(returnPC))
	}
	e.Proc.PCC.SetAddress(target)
	return true
}

// execCJalr implements an indirect capability call/return through an
// authority register, including sentry unsealing (spec 4.4's CJalr rules).
func (e *Engine) execCJalr(in Inst) bool {
	pc := e.Proc.PCC.Address
	authority := e.Proc.GPR(int(in.Rs1))
	imm := in.ImmI

	if authority.IsSealed() {
		if !authority.IsSentry() {
			e.cheriTrap(pc, capability.FaultSealViolation, in.Rs1)
			return false
		}
		if imm != 0 && authority.ObjectType != capability.OTypeSentryInterruptInheriting {
			e.cheriTrap(pc, capability.FaultSealViolation, in.Rs1)
			return false
		}
		switch authority.ObjectType {
		case capability.OTypeSentryInterruptEnablingFwd:
			e.setMIEviaCSR(true)
		case capability.OTypeSentryInterruptDisablingFwd:
			e.setMIEviaCSR(false)
		case capability.OTypeSentryInterruptInheriting:
			// mie left unchanged.
		}
	} else if !authority.Tag {
		e.cheriTrap(pc, capability.FaultTagViolation, in.Rs1)
		return false
	}

	target := authority
	target.SetAddress(uint32(int32(authority.Address) + imm))
	target.ObjectType = capability.OTypeUnsealed

	returnPC := pc + instSize
	if in.Rd != 0 {
		e.Proc.SetGPR(int(in.Rd), e.makeLink(returnPC))
	}
	e.Proc.PCC = target
	return true
}

// setMIEviaCSR flips mstatus.mie directly; used by forward sentries, which
// are architecturally equivalent to writing mstatus through CSpecialRW.
func (e *Engine) setMIEviaCSR(v bool) {
	cur, _ := e.Proc.ReadCSR(0x300, true)
	if v {
		cur |= 1 << 3
	} else {
		cur &^= 1 << 3
	}
	_ = e.Proc.WriteCSR(0x300, cur, true)
}

// execAUICAP adds a pc-relative offset to pcc's address (spec 4.4 AUICAP),
// writing the result to rd without altering pcc itself.
func (e *Engine) execAUICAP(in Inst) bool {
	result := e.Proc.PCC
	result.SetAddress(e.Proc.PCC.Address + uint32(in.ImmU))
	e.Proc.SetGPR(int(in.Rd), result)
	return true
}

func (e *Engine) hasAccessSystemRegisters() bool {
	return e.Proc.PCC.Permissions.Has(capability.PermAccessSystemRegisters)
}

// execCheriTwoOp dispatches the two-capability-operand class (CIncAddr,
// CSetAddr, CSetBounds[Exact], CAndPerm, CSeal, CUnseal, CSub, CTestSubset,
// CSetEqualExact, CToPtr, CFromPtr, CBuildCap, CCopyType).
func (e *Engine) execCheriTwoOp(in Inst) bool {
	pc := e.Proc.PCC.Address
	cs1 := e.Proc.GPR(int(in.Rs1))
	cs2 := e.Proc.GPR(int(in.Rs2))

	switch in.Funct7 {
	case twoOpCIncAddr:
		result := cs1
		result.SetAddress(cs1.Address + cs2.Address)
		if cs1.IsSealed() {
			result.Tag = false
		}
		e.Proc.SetGPR(int(in.Rd), result)

	case twoOpCSetAddr:
		result := cs1
		result.SetAddress(cs2.Address)
		if cs1.IsSealed() {
			result.Tag = false
		}
		e.Proc.SetGPR(int(in.Rd), result)

	case twoOpCSetBounds, twoOpCSetBoundsExact:
		result := cs1
		exact := result.SetBounds(uint64(cs1.Address), uint64(cs2.Address))
		if cs1.IsSealed() {
			result.Tag = false
		}
		if in.Funct7 == twoOpCSetBoundsExact && !exact {
			result.Tag = false
		}
		e.Proc.SetGPR(int(in.Rd), result)

	case twoOpCAndPerm:
		result := cs1
		mask := capability.Perm(cs2.Address)
		removed := result.Permissions &^ mask
		result.ClearPermissions(removed)
		e.Proc.SetGPR(int(in.Rd), result)

	case twoOpCSeal:
		target := cs1
		authority := cs2
		f := capability.Seal(&target, &authority, uint8(authority.Address))
		if f != capability.FaultNone {
			e.cheriTrap(pc, f, in.Rs1)
			return false
		}
		e.Proc.SetGPR(int(in.Rd), target)

	case twoOpCUnseal:
		target := cs1
		authority := cs2
		otype := target.ObjectType
		f := capability.Unseal(&target, &authority, otype)
		if f != capability.FaultNone {
			e.cheriTrap(pc, f, in.Rs1)
			return false
		}
		e.Proc.SetGPR(int(in.Rd), target)

	case twoOpCSub:
		e.setInt(in.Rd, cs1.Address-cs2.Address)

	case twoOpCTestSubset:
		ok := cs1.Tag == cs2.Tag &&
			cs2.Base() >= cs1.Base() && cs2.Top() <= cs1.Top() &&
			cs2.Permissions&cs1.Permissions == cs2.Permissions
		e.setInt(in.Rd, boolToU32(ok))

	case twoOpCSetEqualExact:
		e.setInt(in.Rd, boolToU32(cs1.IsMemoryEqual(&cs2)))

	case twoOpCToPtr:
		if !cs1.Tag {
			e.setInt(in.Rd, 0)
		} else {
			e.setInt(in.Rd, cs1.Address-cs2.Base())
		}

	case twoOpCFromPtr:
		result := cs1
		result.SetAddress(cs1.Address + cs2.Address)
		e.Proc.SetGPR(int(in.Rd), result)

	case twoOpCBuildCap:
		result := cs2
		result.Tag = cs1.Tag
		e.Proc.SetGPR(int(in.Rd), result)

	case twoOpCCopyType:
		result := cs1
		result.ObjectType = cs2.ObjectType
		e.Proc.SetGPR(int(in.Rd), result)

	default:
		e.illegal()
		return false
	}
	return true
}

// execCheriSetBoundsImm implements CSetBoundsImmediate.
func (e *Engine) execCheriSetBoundsImm(in Inst) bool {
	cs1 := e.Proc.GPR(int(in.Rs1))
	result := cs1
	result.SetBounds(uint64(cs1.Address), uint64(uint32(in.ImmI)))
	if cs1.IsSealed() {
		result.Tag = false
	}
	e.Proc.SetGPR(int(in.Rd), result)
	return true
}

// execCheriInspect dispatches single-operand queries/mutators (CGetBase,
// CGetTop, CGetLen, CGetAddr, CGetPerm, CGetType, CGetTag, CGetSealed,
// CGetFlags, CMove, CClearTag).
func (e *Engine) execCheriInspect(in Inst) bool {
	cs1 := e.Proc.GPR(int(in.Rs1))

	switch in.Funct7 {
	case inspectCGetPerm:
		e.setInt(in.Rd, uint32(cs1.Permissions))
	case inspectCGetType:
		if cs1.IsUnsealed() {
			e.setInt(in.Rd, 0)
		} else {
			e.setInt(in.Rd, uint32(cs1.ObjectType))
		}
	case inspectCGetBase:
		e.setInt(in.Rd, cs1.Base())
	case inspectCGetTop:
		e.setInt(in.Rd, cs1.Top())
	case inspectCGetLen:
		e.setInt(in.Rd, cs1.Len32())
	case inspectCGetAddr:
		e.setInt(in.Rd, cs1.Address)
	case inspectCGetTag:
		e.setInt(in.Rd, boolToU32(cs1.Tag))
	case inspectCGetSealed:
		e.setInt(in.Rd, boolToU32(cs1.IsSealed()))
	case inspectCGetFlags:
		e.setInt(in.Rd, boolToU32(cs1.Reserved))
	case inspectCGetHigh:
		e.setInt(in.Rd, cs1.Compress())
	case inspectCMove:
		e.Proc.SetGPR(int(in.Rd), cs1)
	case inspectCClearTag:
		result := cs1
		result.Tag = false
		e.Proc.SetGPR(int(in.Rd), result)
	case inspectCSetHigh:
		addr := cs1.Address
		e.Proc.SetGPR(int(in.Rd), capability.Expand(addr, e.intOf(in.Rs2), cs1.Tag))
	default:
		e.illegal()
		return false
	}
	return true
}
