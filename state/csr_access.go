package state

// CSRAccessError describes why a CSR read/write was rejected, for the
// caller (the engine) to turn into an IllegalInstruction trap.
type CSRAccessError struct {
	Reason string
}

func (e *CSRAccessError) Error() string { return e.Reason }

// liveCounter reads the live cycle/instret counters (with their CSR-write
// offset applied) instead of the static value table, per spec 4.3.
func (p *Processor) liveCounter(addr uint16) (uint32, bool) {
	switch addr {
	case CSRMCycle, CSRCycle:
		return uint32(p.cycle + p.cycleOffset), true
	case CSRMCycleH, CSRCycleH:
		return uint32((p.cycle + p.cycleOffset) >> 32), true
	case CSRMInstret, CSRInstret:
		return uint32(p.instret + p.instretOffset), true
	case CSRMInstretH, CSRInstretH:
		return uint32((p.instret + p.instretOffset) >> 32), true
	}
	return 0, false
}

// ReadCSR reads csr, applying the user-mode whitelist / supervisor-range /
// AccessSystemRegisters rules of spec 4.4. hasAccessSystemRegisters should
// be pcc.Permissions.Has(PermAccessSystemRegisters) at the call site.
func (p *Processor) ReadCSR(addr uint16, hasAccessSystemRegisters bool) (uint32, error) {
	if err := p.checkCSRPrivilege(addr, hasAccessSystemRegisters); err != nil {
		return 0, err
	}
	if v, ok := p.liveCounter(addr); ok {
		return v, nil
	}
	def, ok := p.csrs.defs[addr]
	if !ok {
		return 0, &CSRAccessError{Reason: "unimplemented CSR"}
	}
	return p.csrs.values[addr] & def.readMask, nil
}

// WriteCSR writes csr. Writing minstret/mcycle establishes an offset (v -
// counter) rather than overwriting a static value (spec 4.3).
func (p *Processor) WriteCSR(addr uint16, value uint32, hasAccessSystemRegisters bool) error {
	if err := p.checkCSRPrivilege(addr, hasAccessSystemRegisters); err != nil {
		return err
	}
	switch addr {
	case CSRMCycle, CSRCycle:
		p.cycleOffset = uint64(value) - p.cycle
		return nil
	case CSRMInstret, CSRInstret:
		p.instretOffset = uint64(value) - p.instret
		return nil
	case CSRMshwm:
		p.MSHWM = value &^ 0xF
		return nil
	case CSRMshwmb:
		p.MSHWMB = value &^ 0xF
		return nil
	}
	def, ok := p.csrs.defs[addr]
	if !ok {
		return &CSRAccessError{Reason: "unimplemented CSR"}
	}
	cur := p.csrs.values[addr]
	p.csrs.values[addr] = (cur &^ def.writeMask) | (value & def.writeMask)
	return nil
}

func (p *Processor) checkCSRPrivilege(addr uint16, hasAccessSystemRegisters bool) error {
	if addr == CSRMshwm || addr == CSRMshwmb {
		if !hasAccessSystemRegisters {
			return &CSRAccessError{Reason: "mshwm/mshwmb require AccessSystemRegisters"}
		}
		return nil
	}
	if supervisorRange(addr) {
		return &CSRAccessError{Reason: "supervisor CSR range is forbidden under CHERIoT"}
	}
	if addr >= 0x300 { // machine range
		if !hasAccessSystemRegisters && !userWhitelisted(addr) {
			return &CSRAccessError{Reason: "machine CSR requires AccessSystemRegisters"}
		}
		return nil
	}
	if !userWhitelisted(addr) && !hasAccessSystemRegisters {
		return &CSRAccessError{Reason: "CSR requires AccessSystemRegisters"}
	}
	return nil
}

// MSHWMRead/MSHWMBRead expose the stack high-water CSRs directly for the
// engine's store hook, avoiding the privilege path on every store.
func (p *Processor) MSHWMRead() uint32  { return p.MSHWM }
func (p *Processor) MSHWMBRead() uint32 { return p.MSHWMB }

// OnStore implements spec 3.4: any store address in [mshwmb, mshwm) pulls
// mshwm down to the store's 16-byte-aligned address.
func (p *Processor) OnStore(addr uint32) {
	if p.MSHWMB <= addr && addr < p.MSHWM {
		p.MSHWM = addr &^ 0xF
	}
}

// MIE reports mstatus.mie.
func (p *Processor) MIE() bool { return p.csrs.values[CSRMStatus]&mstatusMIE != 0 }

func (p *Processor) setMIE(v bool) {
	if v {
		p.csrs.values[CSRMStatus] |= mstatusMIE
	} else {
		p.csrs.values[CSRMStatus] &^= mstatusMIE
	}
}

func (p *Processor) setMPIE(v bool) {
	if v {
		p.csrs.values[CSRMStatus] |= mstatusMPIE
	} else {
		p.csrs.values[CSRMStatus] &^= mstatusMPIE
	}
}

func (p *Processor) setMPPMachine() {
	p.csrs.values[CSRMStatus] = (p.csrs.values[CSRMStatus] &^ mstatusMPP) | mppMachine
}

// MIP/MIE raw register access, used by interrupt arbitration and the CLINT.
func (p *Processor) MIP() uint32 { return p.csrs.values[CSRMIp] }
func (p *Processor) SetMIPBit(bit uint32, v bool) {
	if v {
		p.csrs.values[CSRMIp] |= bit
	} else {
		p.csrs.values[CSRMIp] &^= bit
	}
}
func (p *Processor) MIEBits() uint32 { return p.csrs.values[CSRMIe] }

func (p *Processor) MCause() uint32 { return p.csrs.values[CSRMCause] }
func (p *Processor) MTval() uint32  { return p.csrs.values[CSRMTval] }
