package engine

import "github.com/cheriot-sim/cheriot/state"

// execAMO implements LR.W/SC.W and the AMOADD/SWAP/AND/OR/XOR/MIN/MAX family
// (spec 4.4 "Atomics"), address checked the same way a plain word load/store
// would be.
func (e *Engine) execAMO(in Inst) bool {
	pc := e.Proc.PCC.Address
	authority := e.Proc.GPR(int(in.Rs1))
	addr := authority.Address

	if addr%4 != 0 {
		e.trap(pc, addr, state.CauseLoadAddressMisaligned)
		return false
	}

	op := in.Funct7 >> 2
	const (
		amoLR      = 0x02
		amoSC      = 0x03
		amoSwap    = 0x01
		amoAdd     = 0x00
		amoXor     = 0x04
		amoAnd     = 0x0C
		amoOr      = 0x08
		amoMin     = 0x10
		amoMax     = 0x14
		amoMinu    = 0x18
		amoMaxu    = 0x1C
	)

	if op == amoLR {
		if f := checkLoadStoreAuthority(&authority, addr, 4, true, false); f != 0 {
			e.cheriTrap(pc, f, in.Rs1)
			return false
		}
		v, err := e.Mem.LoadWidth(addr, 4)
		if err != nil {
			e.trap(pc, addr, state.CauseLoadAccessFault)
			return false
		}
		e.reservationValid = true
		e.reservationAddr = addr
		e.setInt(in.Rd, uint32(v))
		return true
	}
	if op == amoSC {
		if f := checkLoadStoreAuthority(&authority, addr, 4, false, true); f != 0 {
			e.cheriTrap(pc, f, in.Rs1)
			return false
		}
		if !e.reservationValid || e.reservationAddr != addr {
			e.setInt(in.Rd, 1)
			return true
		}
		e.reservationValid = false
		if err := e.Mem.StoreWidth(addr, 4, uint64(e.intOf(in.Rs2))); err != nil {
			e.trap(pc, addr, state.CauseStoreAccessFault)
			return false
		}
		e.Proc.OnStore(addr)
		e.setInt(in.Rd, 0)
		return true
	}

	if f := checkLoadStoreAuthority(&authority, addr, 4, true, true); f != 0 {
		e.cheriTrap(pc, f, in.Rs1)
		return false
	}
	old, err := e.Mem.LoadWidth(addr, 4)
	if err != nil {
		e.trap(pc, addr, state.CauseLoadAccessFault)
		return false
	}
	oldV := uint32(old)
	rs2V := e.intOf(in.Rs2)
	var newV uint32
	switch op {
	case amoSwap:
		newV = rs2V
	case amoAdd:
		newV = oldV + rs2V
	case amoXor:
		newV = oldV ^ rs2V
	case amoAnd:
		newV = oldV & rs2V
	case amoOr:
		newV = oldV | rs2V
	case amoMin:
		if int32(oldV) < int32(rs2V) {
			newV = oldV
		} else {
			newV = rs2V
		}
	case amoMax:
		if int32(oldV) > int32(rs2V) {
			newV = oldV
		} else {
			newV = rs2V
		}
	case amoMinu:
		if oldV < rs2V {
			newV = oldV
		} else {
			newV = rs2V
		}
	case amoMaxu:
		if oldV > rs2V {
			newV = oldV
		} else {
			newV = rs2V
		}
	default:
		e.illegal()
		return false
	}
	if err := e.Mem.StoreWidth(addr, 4, uint64(newV)); err != nil {
		e.trap(pc, addr, state.CauseStoreAccessFault)
		return false
	}
	e.Proc.OnStore(addr)
	e.setInt(in.Rd, oldV)
	return true
}
