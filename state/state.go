/*
 * cheriot - Processor state: capability register file and CSRs.
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

// Package state holds CHERIoT processor state: the 32 capability GPRs, the
// special capability CSRs, the standard RISC-V CSR file, trap plumbing and
// the stack high-water mark (spec 3.3, 3.4, 4.3). It plays the role the
// teacher's emu/cpu.cpuState struct plays for S/370, generalized from
// integer/floating registers and storage keys to capability registers and
// CHERI CSRs.
package state

import "github.com/cheriot-sim/cheriot/capability"

// NumGPR is the number of capability general-purpose registers (c0..c31).
const NumGPR = 32

// Processor is the full mutable CHERIoT hart state.
type Processor struct {
	gpr [NumGPR]capability.Cap

	PCC       capability.Cap
	MTCC      capability.Cap
	MTDC      capability.Cap
	MEPCC     capability.Cap
	MScratchC capability.Cap

	csrs CSRFile

	MSHWM  uint32
	MSHWMB uint32

	cycle   uint64
	instret uint64

	cycleOffset   uint64
	instretOffset uint64

	trap TrapLatch

	handlerDepth int
}

// NewProcessor returns a Processor with PCC/MTCC pointed at the execute
// root and all GPRs null, matching a CHERIoT reset state.
func NewProcessor() *Processor {
	p := &Processor{}
	p.PCC.ResetExecuteRoot()
	p.MTCC.ResetExecuteRoot()
	p.MTDC.ResetMemoryRoot()
	p.MEPCC.ResetExecuteRoot()
	p.MScratchC.ResetMemoryRoot()
	p.csrs = newCSRFile()
	return p
}

// GPR returns register n (0..31). c0 always reads as a null-tagged zero
// address capability.
func (p *Processor) GPR(n int) capability.Cap {
	if n == 0 {
		return capability.Cap{}
	}
	return p.gpr[n]
}

// SetGPR writes register n. Writes to c0 are discarded (spec 3.3).
func (p *Processor) SetGPR(n int, c capability.Cap) {
	if n == 0 {
		return
	}
	p.gpr[n] = c
}

// Cycle returns the live cycle counter, accounting for any CSR-write offset.
func (p *Processor) Cycle() uint64 { return p.cycle + p.cycleOffset }

// Instret returns the live instruction-retired counter.
func (p *Processor) Instret() uint64 { return p.instret }

// AdvanceCycle increments the raw cycle counter by n (spec 3.3).
func (p *Processor) AdvanceCycle(n uint64) { p.cycle += n }

// RetireInstruction increments the instruction counter by one.
func (p *Processor) RetireInstruction() { p.instret++ }
