/*
 * cheriot - CHERIoT capability value type.
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

// Package capability implements the CHERIoT capability value: its expanded
// in-register representation, its compressed 32-bit on-wire encoding, and
// the bounds/permission/seal algebra that both forms must agree on.
package capability

// Perm is a single bit of the 12-bit CHERIoT permission set.
type Perm uint16

// Permission bits, ordered as in spec 3.1.
const (
	PermGlobal Perm = 1 << iota
	PermLoadGlobal
	PermStore
	PermLoadMutable
	PermStoreLocalCapability
	PermLoad
	PermLoadStoreCapability
	PermAccessSystemRegisters
	PermExecute
	PermUnseal
	PermSeal
	PermUserPerm0

	PermAll Perm = (1 << 12) - 1
)

// Has reports whether all bits of mask are set in p.
func (p Perm) Has(mask Perm) bool { return p&mask == mask }

// Object-type classes (spec 3.1).
const (
	OTypeUnsealed uint8 = 0

	// Executable sentries, values 1..5.
	OTypeSentryInterruptInheriting     uint8 = 1
	OTypeSentryInterruptDisablingFwd   uint8 = 2
	OTypeSentryInterruptEnablingFwd    uint8 = 3
	OTypeSentryInterruptDisablingBwd   uint8 = 4
	OTypeSentryInterruptEnablingBwd    uint8 = 5
	// 6, 7: other sealed executable forms.
	OTypeExecSealedReserved6 uint8 = 6
	OTypeExecSealedReserved7 uint8 = 7

	// 8 is reserved; never a legal object type.
	OTypeReserved8 uint8 = 8

	// 9..15: data-sealing otypes (non-executable).
	OTypeDataSealedMin uint8 = 9
	OTypeDataSealedMax uint8 = 15
)

// Fault is the status a fallible capability operation reports alongside
// clearing the target's tag (spec 4.1, 7). The zero value is success.
type Fault uint8

const (
	FaultNone Fault = iota
	FaultTagViolation
	FaultSealViolation
	FaultBoundsViolation
	FaultPermitExecuteViolation
	FaultPermitLoadViolation
	FaultPermitStoreViolation
	FaultPermitLoadCapViolation
	FaultPermitStoreCapViolation
	FaultPermitStoreLocalCapViolation
	FaultPermitAccessSystemRegistersViolation
	FaultPermitUnsealViolation
	FaultPermitSealViolation
	FaultLengthViolation
	FaultInformationLeakViolation
	FaultGlobalViolation
	FaultPermitCCallViolation
	FaultPermitCInvokeViolation
	FaultSoftwareDefinedViolation
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultTagViolation:
		return "tag violation"
	case FaultSealViolation:
		return "seal violation"
	case FaultBoundsViolation:
		return "bounds violation"
	case FaultPermitExecuteViolation:
		return "permit execute violation"
	case FaultPermitLoadViolation:
		return "permit load violation"
	case FaultPermitStoreViolation:
		return "permit store violation"
	case FaultPermitLoadCapViolation:
		return "permit load capability violation"
	case FaultPermitStoreCapViolation:
		return "permit store capability violation"
	case FaultPermitStoreLocalCapViolation:
		return "permit store local capability violation"
	case FaultPermitAccessSystemRegistersViolation:
		return "permit access system registers violation"
	case FaultPermitUnsealViolation:
		return "permit unseal violation"
	case FaultPermitSealViolation:
		return "permit seal violation"
	case FaultLengthViolation:
		return "length violation"
	case FaultInformationLeakViolation:
		return "information leak violation"
	case FaultGlobalViolation:
		return "global violation"
	case FaultPermitCCallViolation:
		return "permit ccall violation"
	case FaultPermitCInvokeViolation:
		return "permit cinvoke violation"
	default:
		return "software defined violation"
	}
}

// Cap is a CHERIoT capability in expanded form: the seven-tuple of spec 3.1
// plus the cached exponent used to round-trip through the compressed form.
type Cap struct {
	Tag         bool
	Address     uint32
	base        uint64 // 32 bits significant
	top         uint64 // up to 0x1_0000_0000
	Permissions Perm
	ObjectType  uint8
	Reserved    bool
	exponent    uint8 // 0..14, or 24
}

const maxTop = uint64(1) << 32

// ResetNull zeroes all fields except Address; tag is false (spec 4.1).
func (c *Cap) ResetNull() {
	addr := c.Address
	*c = Cap{}
	c.Address = addr
}

// reset installs a maximal root of the given permission set.
func (c *Cap) reset(perms Perm) {
	c.Tag = true
	c.Address = 0
	c.base = 0
	c.top = maxTop
	c.Permissions = perms
	c.ObjectType = OTypeUnsealed
	c.Reserved = false
	c.exponent = 24
}

// memoryRootPerms is the maximal permission set of the memory root.
const memoryRootPerms = PermGlobal | PermLoadGlobal | PermStore | PermLoadMutable |
	PermStoreLocalCapability | PermLoad | PermLoadStoreCapability | PermUserPerm0

// executeRootPerms is the maximal permission set of the executable root.
const executeRootPerms = PermGlobal | PermLoadGlobal | PermLoad | PermLoadStoreCapability |
	PermAccessSystemRegisters | PermLoadMutable | PermExecute | PermUserPerm0

// sealingRootPerms is the maximal permission set of the sealing root.
const sealingRootPerms = PermGlobal | PermLoadGlobal | PermLoad | PermLoadStoreCapability |
	PermUnseal | PermSeal | PermUserPerm0

// ResetMemoryRoot installs the canonical memory root.
func (c *Cap) ResetMemoryRoot() { c.reset(memoryRootPerms) }

// ResetExecuteRoot installs the canonical executable root.
func (c *Cap) ResetExecuteRoot() { c.reset(executeRootPerms) }

// ResetSealingRoot installs the canonical sealing root.
func (c *Cap) ResetSealingRoot() { c.reset(sealingRootPerms) }

// Base returns the lower bound, or 0 for a null capability.
func (c *Cap) Base() uint32 {
	if !c.Tag && c.base == 0 && c.top == 0 {
		return 0
	}
	return uint32(c.base)
}

// Top returns the upper bound projected to 32 bits: 0xFFFF_FFFF when the
// true top is 0x1_0000_0000 (spec 4.1 tie-break).
func (c *Cap) Top() uint32 {
	if c.top >= maxTop {
		return 0xFFFF_FFFF
	}
	return uint32(c.top)
}

// Top64 returns the exact, unprojected top (may be 0x1_0000_0000).
func (c *Cap) Top64() uint64 { return c.top }

// Length returns top-base, in [0, 0x1_0000_0000].
func (c *Cap) Length() uint64 { return c.top - c.base }

// Len32 is Length projected the same way CGetLen does: saturates at
// 0xFFFF_FFFF.
func (c *Cap) Len32() uint32 {
	l := c.Length()
	if l > 0xFFFF_FFFF {
		return 0xFFFF_FFFF
	}
	return uint32(l)
}

// IsValid is tag && address in [base, top).
func (c *Cap) IsValid() bool {
	a := uint64(c.Address)
	return c.Tag && a >= c.base && a < c.top
}

// IsRepresentable is a pure bounds check on the current address (spec 4.1),
// independent of the tag bit.
func (c *Cap) IsRepresentable() bool {
	a := uint64(c.Address)
	return a >= c.base && a < c.top
}

// IsSealed reports whether the object type marks this capability sealed.
func (c *Cap) IsSealed() bool { return c.ObjectType != OTypeUnsealed }

// IsUnsealed is the negation of IsSealed.
func (c *Cap) IsUnsealed() bool { return !c.IsSealed() }

// IsSentry reports whether this is a sealed executable capability used as a
// call target (object types 1..5).
func (c *Cap) IsSentry() bool {
	return c.Permissions.Has(PermExecute) && c.ObjectType >= OTypeSentryInterruptInheriting && c.ObjectType <= OTypeSentryInterruptEnablingBwd
}

// IsMemoryEqual reports whether two capabilities have byte-identical memory
// images: same address word and same compressed form.
func (c *Cap) IsMemoryEqual(o *Cap) bool {
	return c.Address == o.Address && c.Compress() == o.Compress()
}

// clampTop clamps and normalizes a candidate top value to [0, maxTop].
func clampTop(t uint64) uint64 {
	if t > maxTop {
		return maxTop
	}
	return t
}
