package capability

// exponentFor returns the smallest e such that reqBase rounded down to a
// multiple of 2^e and reqTop rounded up to a multiple of 2^e both fit a
// 9-bit mantissa window, per spec 4.1 set_bounds. If the computed e exceeds
// 14 it is forced to 24 (the "infinite precision" exponent covering all of
// the 32-bit address space).
func exponentFor(reqBase, reqTop uint64) uint8 {
	var e uint8
	for e = 0; e < 32; e++ {
		granule := uint64(1) << e
		b := reqBase &^ (granule - 1)
		t := (reqTop + granule - 1) &^ (granule - 1)
		if (t-b)>>e <= 0x1FF {
			break
		}
	}
	if e > 14 {
		return 24
	}
	return e
}

// SetBounds narrows the capability to [reqBase, reqBase+reqLength),
// choosing the exponent per spec 4.1. Returns true iff the result is
// exact. On failure (resulting address out of bounds) the tag is cleared.
func (c *Cap) SetBounds(reqBase uint64, reqLength uint64) bool {
	reqTop := clampTop(reqBase + reqLength)

	e := exponentFor(reqBase, reqTop)
	granule := uint64(1) << e
	if e >= 32 {
		granule = maxTop
	}

	base := reqBase &^ (granule - 1)
	top := clampTop((reqTop + granule - 1) &^ (granule - 1))

	// Growing the rounded region can push it back over the mantissa
	// window; the spec allows exactly one more round at a larger e.
	if (top-base)>>minUint8(e, 31) > 0x1FF && e < 24 {
		e = exponentFor(base, top)
		granule = uint64(1) << e
		base = base &^ (granule - 1)
		top = clampTop((top + granule - 1) &^ (granule - 1))
	}

	exact := base == reqBase && (top-base) == reqLength

	c.base = base
	c.top = top
	c.exponent = e

	if !c.IsRepresentable() {
		c.Tag = false
	}
	return exact
}

func minUint8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

// ComputeBounds re-derives (base, top) as 32-bit projected values, used by
// queries such as CGetTop/CGetLen when the caller wants the authoritative
// current bounds rather than cached fields.
func (c *Cap) ComputeBounds() (base uint32, top uint32) {
	return c.Base(), c.Top()
}

// representableWindow returns the legal address window [lo, hi) for
// SetAddress on the current bounds' exponent (spec 4.1, testable property
// 3): [base - 2^(e+9), base + 2*2^(e+9)).
func (c *Cap) representableWindow() (lo int64, hi int64) {
	e := c.exponent
	if e > 24 {
		e = 24
	}
	span := int64(1) << (uint(e) + 9)
	return int64(c.base) - span, int64(c.base) + 2*span
}

// SetAddress mutates the address, preserving representability. If the new
// address falls outside the representable window for a tagged capability,
// the tag is cleared (spec 4.1, testable property 3).
func (c *Cap) SetAddress(a uint32) {
	c.Address = a
	if !c.Tag {
		return
	}
	lo, hi := c.representableWindow()
	v := int64(a)
	if v < lo || v >= hi {
		c.Tag = false
	}
}

// ClearPermissions removes the bits in mask from Permissions, then
// re-derives the result through a compress/expand round trip so that
// clearing a base permission bit of a compressed format also clears that
// format's dependent bits (spec 4.1).
func (c *Cap) ClearPermissions(mask Perm) {
	c.Permissions &^= mask
	compressed := c.Compress()
	_, perms, otype, _, _ := decodeFields(compressed)
	c.Permissions = perms
	if c.ObjectType != OTypeUnsealed {
		// Re-derive only the implicit high bit; low bits are unaffected
		// by permission compression.
		c.ObjectType = impliedObjectType(c.ObjectType, perms)
	}
	_ = otype
}
