/*
 * cheriot - ELF program loader.
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

// Package loader is the minimal "external collaborator" spec 1 carves out
// of the simulator core: it deposits instruction and data bytes from an
// ELF image into tagged memory and exposes GetSymbol/GetFunctionName, the
// two queries the engine.Loader interface needs for symbolic debugging
// (spec 6). Only the stdlib debug/elf reader is implemented; a full ELF
// loader (dynamic relocation, multiple program headers with overlapping
// permissions, etc.) is out of scope per spec 1/14 — CHERIoT firmware
// images are small, statically linked, single-segment-per-section blobs,
// so the stdlib reader is sufficient.
package loader

import (
	"debug/elf"
	"fmt"
	"sort"

	"github.com/cheriot-sim/cheriot/memory"
)

// ELFLoader implements engine.Loader against a parsed ELF file.
type ELFLoader struct {
	symbols   map[string]uint32
	functions []funcSym // sorted by address, for GetFunctionName's range lookup
	entry     uint32
	tohost    uint32
	hasTohost bool
}

type funcSym struct {
	addr uint32
	name string
}

// Load reads path, deposits every PT_LOAD segment's bytes into mem at its
// physical address, and indexes the symbol table. It returns the parsed
// loader so the caller can also fetch Entry()/ToHostAddress().
func Load(path string, mem *memory.Memory) (*ELFLoader, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	l := &ELFLoader{
		symbols: make(map[string]uint32),
		entry:   uint32(f.Entry),
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("loader: read segment at %#x: %w", prog.Paddr, err)
		}
		if err := mem.Store(uint32(prog.Paddr), data); err != nil {
			return nil, fmt.Errorf("loader: deposit segment at %#x: %w", prog.Paddr, err)
		}
	}

	syms, err := f.Symbols()
	if err != nil && len(syms) == 0 {
		// A stripped binary with no symbol table is still a valid image
		// to execute; symbolic lookups just come back empty.
		syms = nil
	}
	for _, sym := range syms {
		if sym.Name == "" {
			continue
		}
		l.symbols[sym.Name] = uint32(sym.Value)
		if elf.ST_TYPE(sym.Info) == elf.STT_FUNC {
			l.functions = append(l.functions, funcSym{addr: uint32(sym.Value), name: sym.Name})
		}
	}
	sort.Slice(l.functions, func(i, j int) bool { return l.functions[i].addr < l.functions[j].addr })

	if addr, ok := l.symbols["tohost"]; ok {
		l.tohost = addr
		l.hasTohost = true
	}

	return l, nil
}

// Entry returns the ELF entry point, the initial pcc.address.
func (l *ELFLoader) Entry() uint32 { return l.entry }

// ToHostAddress returns the "tohost" symbol's address, if the image
// defines one (spec 6: "a store watchpoint on it decodes an exit code").
func (l *ELFLoader) ToHostAddress() (uint32, bool) { return l.tohost, l.hasTohost }

// GetSymbol implements engine.Loader.
func (l *ELFLoader) GetSymbol(name string) (uint32, bool) {
	addr, ok := l.symbols[name]
	return addr, ok
}

// GetFunctionName implements engine.Loader: the function symbol with the
// highest address not above addr. The last function's range is
// open-ended; ok=false only below the first function symbol or when there
// are none.
func (l *ELFLoader) GetFunctionName(addr uint32) (string, bool) {
	if len(l.functions) == 0 {
		return "", false
	}
	i := sort.Search(len(l.functions), func(i int) bool { return l.functions[i].addr > addr }) - 1
	if i < 0 {
		return "", false
	}
	return l.functions[i].name, true
}

// DecodeExitCode implements the tohost exit-code convention of spec 6:
// the low bit set means the guest asked to terminate, and the upper 31
// bits carry the return code.
func DecodeExitCode(value uint32) (code uint32, exit bool) {
	return value >> 1, value&1 != 0
}
