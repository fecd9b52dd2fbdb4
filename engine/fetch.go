package engine

import "github.com/cheriot-sim/cheriot/state"

const instSize = 4

// fetch implements spec 4.4's fetch cycle: alignment check, then
// capability-authority check, then the raw 32-bit read. Compressed (16-bit) fetch is
// out of scope here (Non-goals carry the floating/vector/compressed
// extensions as surrounding functionality only).
func (e *Engine) fetch() (uint32, bool) {
	pc := e.Proc.PCC.Address

	if pc&1 != 0 {
		e.trap(pc, pc, state.CauseInstructionAddressMisaligned)
		return 0, false
	}
	if pc&2 != 0 {
		e.trap(pc, pc, state.CauseInstructionAddressMisaligned)
		return 0, false
	}

	if f := checkFetchAuthority(&e.Proc.PCC, instSize); f != 0 {
		e.cheriTrap(pc, f, 0)
		return 0, false
	}

	raw, err := e.Mem.Memory().LoadUint(pc, 4)
	if err != nil {
		e.trap(pc, pc, state.CauseLoadAccessFault)
		return 0, false
	}
	return uint32(raw), true
}
