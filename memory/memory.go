/*
 * cheriot - Tagged memory.
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

// Package memory implements CHERIoT tagged memory: a byte-addressable
// store that carries one tag bit per 8-byte capability granule (spec 3.2,
// 4.2). It is adapted from the teacher's low-level mem/key accessor shape
// (emu/memory/memory.go) generalized from 32-bit-word storage keys to
// byte-granular tag bits.
package memory

import "fmt"

const granuleSize = 8

// Memory is a flat byte-addressable store with a tag bit per granule.
type Memory struct {
	bytes []byte
	tags  []uint64 // one bit per granule, packed 64 per word
	size  uint32
}

// New allocates a Memory of the given size in bytes. size is rounded up to
// a granule multiple.
func New(size uint32) *Memory {
	granules := (size + granuleSize - 1) / granuleSize
	size = granules * granuleSize
	return &Memory{
		bytes: make([]byte, size),
		tags:  make([]uint64, (granules+63)/64),
		size:  size,
	}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 { return m.size }

// CheckAddr reports whether addr is within bounds.
func (m *Memory) CheckAddr(addr uint32) bool { return addr < m.size }

func (m *Memory) granuleOf(addr uint32) uint32 { return addr / granuleSize }

// TagAt returns the tag bit of the granule containing addr.
func (m *Memory) TagAt(addr uint32) bool {
	if !m.CheckAddr(addr) {
		return false
	}
	g := m.granuleOf(addr)
	return m.tags[g/64]&(1<<(g%64)) != 0
}

func (m *Memory) setTag(granule uint32, v bool) {
	idx, bit := granule/64, uint(granule%64)
	if v {
		m.tags[idx] |= 1 << bit
	} else {
		m.tags[idx] &^= 1 << bit
	}
}

func (m *Memory) clearTag(granule uint32) { m.setTag(granule, false) }

// granulesTouched returns the inclusive range of granule indices that
// [addr, addr+n) overlaps.
func granulesTouched(addr uint32, n int) (first, last uint32) {
	first = addr / granuleSize
	last = (addr + uint32(n) - 1) / granuleSize
	return
}

// ErrOutOfRange is returned when an access falls outside the memory.
var ErrOutOfRange = fmt.Errorf("memory: address out of range")

// Load reads n bytes at addr without affecting tags. n must be 1, 2, 4 or
// 8.
func (m *Memory) Load(addr uint32, n int) ([]byte, error) {
	if !m.CheckAddr(addr) || !m.CheckAddr(addr+uint32(n)-1) {
		return nil, ErrOutOfRange
	}
	out := make([]byte, n)
	copy(out, m.bytes[addr:addr+uint32(n)])
	return out, nil
}

// Store writes data at addr. Any granule only partially overlapped by the
// write has its tag cleared (spec 3.2/4.2): writing a plain integer into a
// capability slot invalidates the capability. A full, 8-aligned 8-byte
// store also clears the tag — only StoreCapability may set a tag true.
func (m *Memory) Store(addr uint32, data []byte) error {
	n := len(data)
	if !m.CheckAddr(addr) || !m.CheckAddr(addr+uint32(n)-1) {
		return ErrOutOfRange
	}
	copy(m.bytes[addr:addr+uint32(n)], data)

	first, last := granulesTouched(addr, n)
	for g := first; g <= last; g++ {
		m.clearTag(g)
	}
	return nil
}

// LoadCapability reads the 8-byte granule at addr plus its tag bit. addr
// must be 8-aligned.
func (m *Memory) LoadCapability(addr uint32) (word uint64, tag bool, err error) {
	if addr%granuleSize != 0 {
		return 0, false, fmt.Errorf("memory: misaligned capability load at %#x", addr)
	}
	if !m.CheckAddr(addr) || !m.CheckAddr(addr+granuleSize-1) {
		return 0, false, ErrOutOfRange
	}
	word = leUint64(m.bytes[addr : addr+granuleSize])
	tag = m.TagAt(addr)
	return word, tag, nil
}

// StoreCapability writes the 8-byte granule at addr and sets its tag
// atomically with the data (spec 4.2). addr must be 8-aligned.
func (m *Memory) StoreCapability(addr uint32, word uint64, tag bool) error {
	if addr%granuleSize != 0 {
		return fmt.Errorf("memory: misaligned capability store at %#x", addr)
	}
	if !m.CheckAddr(addr) || !m.CheckAddr(addr+granuleSize-1) {
		return ErrOutOfRange
	}
	putLEUint64(m.bytes[addr:addr+granuleSize], word)
	m.setTag(m.granuleOf(addr), tag)
	return nil
}

// ReadTagRange reports the tag bits for granules covering [addr, addr+n).
// Used by the debug interface's read_tag_memory (spec 6).
func (m *Memory) ReadTagRange(addr uint32, n uint32) []bool {
	out := make([]bool, 0, n/granuleSize+1)
	for a := addr - (addr % granuleSize); a < addr+n; a += granuleSize {
		out = append(out, m.TagAt(a))
	}
	return out
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func putLEUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}
