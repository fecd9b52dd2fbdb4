package engine

// Step executes exactly one instruction (or takes a pending interrupt),
// advancing the cycle/instruction counters and running any due cycle
// observers (spec 4.4, 4.3's interrupt arbitration). It returns false when
// a trap, halt request, or fetch failure interrupted normal retirement.
func (e *Engine) Step() bool {
	if code, ok := e.Proc.PendingInterrupt(); ok {
		e.interruptTrap(e.Proc.PCC.Address, code)
		e.advanceCycles(1)
		return false
	}

	raw, ok := e.fetch()
	if !ok {
		e.advanceCycles(1)
		return false
	}

	in := decode(raw)
	startPC := e.Proc.PCC.Address
	ok = e.dispatch(in)

	if ok {
		e.Proc.RetireInstruction()
		if e.breakOnControlFlowChange && e.Proc.PCC.Address != startPC+instSize {
			e.debug.trace.record(startPC, e.Proc.PCC.Address)
		}
	}
	e.advanceCycles(1)

	if e.halt != HaltNone && e.run != StateHalted {
		e.run = StateHalted
	}
	return ok
}

// dispatch routes a decoded instruction to its execution class. Advancing
// pcc to the next instruction on non-control-flow opcodes is each
// non-branching handler's job via the default fallthrough below, matching
// how the teacher's cpu.execute return value drives its own pc update.
func (e *Engine) dispatch(in Inst) bool {
	advancesPC := true
	var ok bool

	switch in.Opcode {
	case opOp:
		ok = e.execOp(in)
	case opOpImm:
		ok = e.execOpImm(in)
	case opLUI:
		ok = e.execLUI(in)
	case opAUIPC:
		ok = e.execAUICAP(in)
	case opBranch:
		ok = e.execBranch(in)
		advancesPC = false
	case opJAL:
		ok = e.execCJal(in)
		advancesPC = false
	case opJALR:
		ok = e.execCJalr(in)
		advancesPC = false
	case opLoad:
		ok = e.execLoad(in)
	case opStore:
		ok = e.execStore(in)
	case opAMO:
		ok = e.execAMO(in)
	case opMiscMem:
		ok = true // FENCE is a no-op in this single-hart core
	case opSystem:
		ok = e.execSystem(in)
		if in.Funct3 == 0 {
			advancesPC = false
		}
	case opCheri:
		switch in.Funct3 {
		case cheriF3CLc:
			ok = e.execCLc(in)
		case cheriF3TwoOp:
			ok = e.execCheriTwoOp(in)
		case cheriF3Inspect:
			ok = e.execCheriInspect(in)
		case cheriF3SetBoundsI:
			ok = e.execCheriSetBoundsImm(in)
		case cheriF3SpecialRW:
			ok = e.execCSpecialRW(in)
		case cheriF3Store:
			ok = e.execCSc(in)
		default:
			e.illegal()
			ok = false
		}
	default:
		e.illegal()
		ok = false
	}

	if ok && advancesPC {
		e.Proc.PCC.SetAddress(e.Proc.PCC.Address + instSize)
	}
	return ok
}
