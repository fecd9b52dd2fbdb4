/*
 * cheriot - Revocation bitmap lookup.
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

// Package revoke implements the CHERIoT revocation subsystem (spec 4.5): the
// memory-mapped Ibex hardware revoker, the independent periodic load-filter,
// and the bit-lookup math both share with the engine's own CLc attenuation
// check. Grounded on original_source/cheriot/cheriot_ibex_hw_revoker.cc and
// cheriot_load_filter.cc.
package revoke

import "github.com/cheriot-sim/cheriot/memory"

// Bitmap answers "is the capability whose base is addr currently revoked?"
// by consulting one bit per 8-byte heap granule (one bitmap byte per 64
// bytes of heap), stored as plain bytes in
// main memory starting at bitsBase (spec 4.5's "revocation bitmap").
type Bitmap struct {
	mem      *memory.Memory
	bitsBase uint32
	heapBase uint32
	heapTop  uint32
}

// NewBitmap builds a bitmap view over [heapBase, heapBase+heapSize) whose
// bits live in mem starting at bitsBase.
func NewBitmap(mem *memory.Memory, bitsBase, heapBase, heapSize uint32) *Bitmap {
	return &Bitmap{mem: mem, bitsBase: bitsBase, heapBase: heapBase, heapTop: heapBase + heapSize}
}

// offsetAndBit implements spec 4.5's "revocation_offset = (addr -
// heap_base) >> 6; bit = ((addr - heap_base) >> 3) & 7".
func (b *Bitmap) offsetAndBit(addr uint32) (uint32, uint8) {
	off := addr - b.heapBase
	return off >> 6, uint8((off >> 3) & 7)
}

// IsRevoked reports whether addr (a capability's base) falls in a revoked
// granule. Addresses outside the heap range are never revoked.
func (b *Bitmap) IsRevoked(addr uint32) bool {
	if addr < b.heapBase || addr >= b.heapTop {
		return false
	}
	byteOff, bit := b.offsetAndBit(addr)
	buf, err := b.mem.Load(b.bitsBase+byteOff, 1)
	if err != nil {
		return false
	}
	return buf[0]&(1<<bit) != 0
}

// SetBit marks (or clears) the revocation bit for the granule containing
// addr; used by tests and by a quarantine-management component driving the
// sweeper.
func (b *Bitmap) SetBit(addr uint32, revoked bool) error {
	byteOff, bit := b.offsetAndBit(addr)
	buf, err := b.mem.Load(b.bitsBase+byteOff, 1)
	if err != nil {
		return err
	}
	if revoked {
		buf[0] |= 1 << bit
	} else {
		buf[0] &^= 1 << bit
	}
	return b.mem.Store(b.bitsBase+byteOff, buf)
}
