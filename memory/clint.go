/*
 * cheriot - CLINT timer peripheral stub.
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

package memory

// CLINT register offsets: mtime and mtimecmp, the pair a machine-timer
// interrupt source actually needs. Non-goals exclude the peripheral's
// precise timer-compare semantics beyond this periodic-tick stub.
const (
	ClintOffsetMtimeLo     = 0x00
	ClintOffsetMtimeHi     = 0x04
	ClintOffsetMtimeCmpLo  = 0x08
	ClintOffsetMtimeCmpHi  = 0x0C
)

// Clint is a minimal machine-timer peripheral: mtime advances with
// SubscribeCycle's tick count and mtimecmp raises the machine-timer
// interrupt once mtime reaches it, matching real CLINT register naming
// without modeling true wall-clock timing (spec 6's ClintMMRBase/
// ClintPeriod configuration surface).
type Clint struct {
	period int
	ticks  int

	mtime    uint64
	mtimeCmp uint64

	raiseIRQ func(bool)
	firing   bool
}

// NewClint builds a Clint that advances mtime once per period cycles,
// calling raiseIRQ(true) the instant mtime reaches mtimeCmp and
// raiseIRQ(false) once software raises the compare value again.
func NewClint(period int, raiseIRQ func(bool)) *Clint {
	if period < 1 {
		period = 1
	}
	return &Clint{period: period, raiseIRQ: raiseIRQ}
}

// OnCycle implements the cycle-observer signature package engine
// subscribes peripherals with.
func (c *Clint) OnCycle(delta uint64) {
	c.ticks += int(delta)
	for c.ticks >= c.period {
		c.ticks -= c.period
		c.mtime++
		c.checkCompare()
	}
}

func (c *Clint) checkCompare() {
	pending := c.mtime >= c.mtimeCmp
	if pending == c.firing {
		return
	}
	c.firing = pending
	if c.raiseIRQ != nil {
		c.raiseIRQ(pending)
	}
}

// Load implements Device for mtime/mtimecmp register reads.
func (c *Clint) Load(offset uint32, width int) (uint64, error) {
	switch offset {
	case ClintOffsetMtimeLo:
		return uint64(uint32(c.mtime)), nil
	case ClintOffsetMtimeHi:
		return uint64(uint32(c.mtime >> 32)), nil
	case ClintOffsetMtimeCmpLo:
		return uint64(uint32(c.mtimeCmp)), nil
	case ClintOffsetMtimeCmpHi:
		return uint64(uint32(c.mtimeCmp >> 32)), nil
	default:
		return 0, nil
	}
}

// Store implements Device for mtimecmp register writes; mtime itself is
// read-only hardware state, matching real CLINT behavior.
func (c *Clint) Store(offset uint32, width int, value uint64) error {
	switch offset {
	case ClintOffsetMtimeCmpLo:
		c.mtimeCmp = (c.mtimeCmp &^ 0xFFFF_FFFF) | uint64(uint32(value))
	case ClintOffsetMtimeCmpHi:
		c.mtimeCmp = (c.mtimeCmp & 0xFFFF_FFFF) | (uint64(uint32(value)) << 32)
	}
	c.checkCompare()
	return nil
}
