/*
 * cheriot - Fetch/decode/execute engine.
 *
 * Copyright 2026, CHERIoT Simulator Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package engine implements the CHERIoT fetch-decode-execute loop: the
// instruction semantics of spec 4.4 built on top of package capability
// (component A), package memory (component B) and package state
// (component C). It plays the role the teacher's emu/cpu package plays for
// S/370, generalized from EBCDIC/decimal/RX-format instructions to
// RISC-V/CHERIoT ones, and from emu/core's goroutine run loop (spec 5).
package engine

import (
	"github.com/cheriot-sim/cheriot/memory"
	"github.com/cheriot-sim/cheriot/state"
)

// HaltReason enumerates why the run-loop state machine stopped (spec 4.4).
type HaltReason int

const (
	HaltNone HaltReason = iota
	HaltUserRequest
	HaltSoftwareBreakpoint
	HaltHardwareBreakpoint
	HaltDataWatchPoint
	HaltProgramDone
	HaltActionPoint
	HaltSemihost
	HaltSimulatorError
	HaltCustomRangeStart HaltReason = 1000
)

// RunState is the Halted/Running/SingleStep state machine of spec 4.4.
type RunState int

const (
	StateHalted RunState = iota
	StateRunning
	StateSingleStep
)

// Loader is the external collaborator contract spec 6 describes: ELF
// loading, symbol lookup and tohost decoding live outside this engine.
type Loader interface {
	GetSymbol(name string) (addr uint32, ok bool)
	GetFunctionName(addr uint32) (name string, ok bool)
}

// Engine drives one CHERIoT hart: fetch, decode, execute, traps, debug
// hooks and the revocation-bitmap lookup it must consult on every
// capability load (spec 4.4).
type Engine struct {
	Proc *state.Processor
	Mem  *memory.Router

	run   RunState
	halt  HaltReason
	lastHalt HaltReason

	breakOnControlFlowChange bool

	// revocationLookup reports whether the capability base at addr is
	// currently revoked; nil disables revocation entirely. Wired to
	// package revoke's bitmap by the process entry point.
	revocationLookup func(base uint32) bool

	// reservation models LR.W/SC.W (spec 4.4 "Atomics").
	reservationValid bool
	reservationAddr  uint32

	debug   debugHooks
	loader  Loader
	tohost  *uint32
	exitCode uint32
	exited   bool

	cycleObservers []func(uint64)

	worker runWorker
}

// SetTohost installs the well-known "tohost" exit-code address the loader
// discovered (spec 6's loader contract): a store there decodes an exit
// code, lsb set meaning terminate.
func (e *Engine) SetTohost(addr uint32) {
	a := addr
	e.tohost = &a
}

// ExitCode and Exited report the decoded tohost value (spec 6).
func (e *Engine) ExitCode() uint32 { return e.exitCode >> 1 }
func (e *Engine) Exited() bool     { return e.exited }

// afterLoad checks load watchpoints for [addr, addr+size).
func (e *Engine) afterLoad(addr, size uint32) {
	if w, ok := e.checkWatch(addr, size, WatchLoad); ok {
		_ = w
		e.requestHalt(HaltDataWatchPoint)
	}
}

// afterStore checks store watchpoints and the tohost exit convention.
func (e *Engine) afterStore(addr, size uint32, value uint64) {
	if e.tohost != nil && addr == *e.tohost {
		e.exitCode = uint32(value)
		if e.exitCode&1 != 0 {
			e.exited = true
			e.requestHalt(HaltProgramDone)
		}
	}
	if w, ok := e.checkWatch(addr, size, WatchStore); ok {
		_ = w
		e.requestHalt(HaltDataWatchPoint)
	}
}

// New creates an Engine over mem with fresh processor state.
func New(mem *memory.Router) *Engine {
	e := &Engine{
		Proc: state.NewProcessor(),
		Mem:  mem,
	}
	e.debug.init()
	return e
}

// SetRevocationLookup installs the revocation-bitmap query used by CLc and
// the load-filter attenuation rule (spec 4.4, 4.5).
func (e *Engine) SetRevocationLookup(f func(base uint32) bool) {
	e.revocationLookup = f
}

// SetLoader installs the ELF loader collaborator (spec 6).
func (e *Engine) SetLoader(l Loader) { e.loader = l }

// SetBreakOnControlFlowChange toggles the debug-trace-on-branch mode (spec 6).
func (e *Engine) SetBreakOnControlFlowChange(v bool) { e.breakOnControlFlowChange = v }

// SubscribeCycle registers an observer notified on every cycle advance,
// exactly the fan-out spec 2 describes for the revoker and load-filter.
func (e *Engine) SubscribeCycle(f func(delta uint64)) {
	e.cycleObservers = append(e.cycleObservers, f)
}

func (e *Engine) advanceCycles(n uint64) {
	e.Proc.AdvanceCycle(n)
	for _, obs := range e.cycleObservers {
		obs(n)
	}
}

// RunStatus reports the current run state (spec 6 get_run_status).
func (e *Engine) RunStatus() RunState { return e.run }

// LastHaltReason reports why the engine most recently stopped (spec 6
// get_last_halt_reason).
func (e *Engine) LastHaltReason() HaltReason { return e.lastHalt }

// Symbol and FunctionName forward to the installed loader, letting a debug
// shell resolve addresses without reaching around the engine (spec 6's
// loader contract).
func (e *Engine) Symbol(name string) (uint32, bool) {
	if e.loader == nil {
		return 0, false
	}
	return e.loader.GetSymbol(name)
}

func (e *Engine) FunctionName(addr uint32) (string, bool) {
	if e.loader == nil {
		return "", false
	}
	return e.loader.GetFunctionName(addr)
}
