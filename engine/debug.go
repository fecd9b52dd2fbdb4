package engine

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	lua "github.com/yuin/gopher-lua"
)

const traceRingSize = 256

// WatchKind selects which accesses a data watchpoint fires on (spec 6).
type WatchKind int

const (
	WatchLoad WatchKind = 1 << iota
	WatchStore
	WatchLoadStore = WatchLoad | WatchStore
)

type watchpoint struct {
	addr, length uint32
	kind         WatchKind
}

type actionPoint struct {
	id       int
	addr     uint32
	enabled  bool
	callback func(addr uint32)
	lua      *lua.LState
}

// breakpointInst is the value substituted into tagged memory at a
// breakpoint/action-point address: an EBREAK encoding, matching the
// teacher's notion of a substituted trap instruction.
const breakpointInst uint32 = 0x00100073

// debugHooks is the engine's debug-shell/host-bridge surface (spec 6):
// breakpoints, watchpoints, action points and the branch-trace ring. IDs
// are tracked with sets rather than ad hoc slices, the way the retrieved
// pack's set-bookkeeping library is used elsewhere in the corpus.
type debugHooks struct {
	breakpoints    mapset.Set[uint32]
	savedOriginals map[uint32]uint32

	watchpoints map[uint32]watchpoint
	actions     map[uint32][]*actionPoint
	actionIDs   mapset.Set[int]
	nextActionID int

	trace *branchTrace
}

func (d *debugHooks) init() {
	d.breakpoints = mapset.NewSet[uint32]()
	d.savedOriginals = make(map[uint32]uint32)
	d.watchpoints = make(map[uint32]watchpoint)
	d.actions = make(map[uint32][]*actionPoint)
	d.actionIDs = mapset.NewSet[int]()
	d.trace = newBranchTrace(traceRingSize)
}

// HasBreakpoint reports whether addr carries a software breakpoint.
func (e *Engine) HasBreakpoint(addr uint32) bool { return e.debug.breakpoints.Contains(addr) }

// SetSWBreakpoint installs a software breakpoint at addr, substituting an
// EBREAK encoding and remembering the displaced word.
func (e *Engine) SetSWBreakpoint(addr uint32) error {
	if e.debug.breakpoints.Contains(addr) {
		return nil
	}
	orig, err := e.Mem.Memory().LoadUint(addr, 4)
	if err != nil {
		return err
	}
	e.debug.savedOriginals[addr] = uint32(orig)
	e.debug.breakpoints.Add(addr)
	return e.Mem.Memory().StoreUint(addr, 4, uint64(breakpointInst))
}

// ClearSWBreakpoint removes a software breakpoint, restoring the displaced
// instruction word.
func (e *Engine) ClearSWBreakpoint(addr uint32) error {
	if !e.debug.breakpoints.Contains(addr) {
		return nil
	}
	orig := e.debug.savedOriginals[addr]
	e.debug.breakpoints.Remove(addr)
	delete(e.debug.savedOriginals, addr)
	return e.Mem.Memory().StoreUint(addr, 4, uint64(orig))
}

// ClearAllSWBreakpoints removes every installed software breakpoint.
func (e *Engine) ClearAllSWBreakpoints() {
	for _, addr := range e.debug.breakpoints.ToSlice() {
		_ = e.ClearSWBreakpoint(addr)
	}
}

// SetActionPoint installs a user callback at addr, substituting a trap
// instruction the same way a breakpoint does, and returns an id used to
// enable/disable/clear that specific action independent of others at the
// same address.
func (e *Engine) SetActionPoint(addr uint32, callback func(addr uint32)) (int, error) {
	if _, ok := e.debug.savedOriginals[addr]; !ok && !e.debug.breakpoints.Contains(addr) {
		orig, err := e.Mem.Memory().LoadUint(addr, 4)
		if err != nil {
			return 0, err
		}
		e.debug.savedOriginals[addr] = uint32(orig)
		if err := e.Mem.Memory().StoreUint(addr, 4, uint64(breakpointInst)); err != nil {
			return 0, err
		}
	}
	e.debug.nextActionID++
	id := e.debug.nextActionID
	ap := &actionPoint{id: id, addr: addr, enabled: true, callback: callback}
	e.debug.actions[addr] = append(e.debug.actions[addr], ap)
	e.debug.actionIDs.Add(id)
	return id, nil
}

// SetActionPointScript installs a Lua script as an action-point callback,
// run with gopher-lua. The script's "on_action" global function, if
// defined, is invoked with the triggering address.
func (e *Engine) SetActionPointScript(addr uint32, script string) (int, error) {
	L := lua.NewState()
	if err := L.DoString(script); err != nil {
		L.Close()
		return 0, fmt.Errorf("engine: action point script error: %w", err)
	}
	id, err := e.SetActionPoint(addr, func(triggerAddr uint32) {
		fn := L.GetGlobal("on_action")
		if fn.Type() != lua.LTFunction {
			return
		}
		_ = L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(triggerAddr))
	})
	if err != nil {
		L.Close()
		return 0, err
	}
	for _, ap := range e.debug.actions[addr] {
		if ap.id == id {
			ap.lua = L
		}
	}
	return id, nil
}

func (e *Engine) findAction(addr uint32, id int) *actionPoint {
	for _, ap := range e.debug.actions[addr] {
		if ap.id == id {
			return ap
		}
	}
	return nil
}

// ClearActionPoint removes a single action point, restoring the original
// instruction word only once no breakpoint or other action remains at addr.
func (e *Engine) ClearActionPoint(addr uint32, id int) {
	list := e.debug.actions[addr]
	for i, ap := range list {
		if ap.id == id {
			if ap.lua != nil {
				ap.lua.Close()
			}
			e.debug.actions[addr] = append(list[:i], list[i+1:]...)
			e.debug.actionIDs.Remove(id)
			break
		}
	}
	if len(e.debug.actions[addr]) == 0 && !e.debug.breakpoints.Contains(addr) {
		if orig, ok := e.debug.savedOriginals[addr]; ok {
			_ = e.Mem.Memory().StoreUint(addr, 4, uint64(orig))
			delete(e.debug.savedOriginals, addr)
		}
	}
}

// EnableAction / DisableAction toggle a single action point without
// removing its registration.
func (e *Engine) EnableAction(addr uint32, id int) {
	if ap := e.findAction(addr, id); ap != nil {
		ap.enabled = true
	}
}

func (e *Engine) DisableAction(addr uint32, id int) {
	if ap := e.findAction(addr, id); ap != nil {
		ap.enabled = false
	}
}

// SetDataWatchpoint registers a load/store address-range callback (spec 6).
func (e *Engine) SetDataWatchpoint(addr, length uint32, kind WatchKind) {
	e.debug.watchpoints[addr] = watchpoint{addr: addr, length: length, kind: kind}
}

// ClearDataWatchpoint removes a previously registered watchpoint.
func (e *Engine) ClearDataWatchpoint(addr uint32) {
	delete(e.debug.watchpoints, addr)
}

// checkWatch reports whether [addr, addr+size) intersects any watchpoint
// active for kind, and if so, which.
func (e *Engine) checkWatch(addr, size uint32, kind WatchKind) (watchpoint, bool) {
	for _, w := range e.debug.watchpoints {
		if w.kind&kind == 0 {
			continue
		}
		if addr < w.addr+w.length && addr+size > w.addr {
			return w, true
		}
	}
	return watchpoint{}, false
}

// onEBreak is invoked when execution retires an EBREAK; if addr is a known
// breakpoint or action point, it requests the matching halt instead of a
// plain environment-break trap.
func (e *Engine) onEBreak(addr uint32) {
	if list := e.debug.actions[addr]; len(list) > 0 {
		e.stepPastSubstituted(addr, func() {
			for _, ap := range list {
				if ap.enabled && ap.callback != nil {
					ap.callback(addr)
				}
			}
		})
		e.requestHalt(HaltActionPoint)
		return
	}
	if e.debug.breakpoints.Contains(addr) {
		e.requestHalt(HaltSoftwareBreakpoint)
		return
	}
	e.trap(addr, addr, 3) // RISC-V breakpoint exception
}

// stepPastSubstituted swaps the original word back in at addr while the
// callback runs, then restores the trap instruction. It does not execute
// the original instruction; pcc is left at addr.
func (e *Engine) stepPastSubstituted(addr uint32, callback func()) {
	orig, ok := e.debug.savedOriginals[addr]
	if !ok {
		callback()
		return
	}
	_ = e.Mem.Memory().StoreUint(addr, 4, uint64(orig))
	callback()
	_ = e.Mem.Memory().StoreUint(addr, 4, uint64(breakpointInst))
}

func (e *Engine) requestHalt(reason HaltReason) {
	e.run = StateHalted
	e.halt = reason
	e.lastHalt = reason
}
