package capability

// permFormat selects one of the canonical compressed permission shapes named
// in spec 4.1: Seal, Exe, Exe+LoadMutable, MemRW-cap, MemRO-cap, MemWO-cap,
// MemData-only. Each format fixes a base permission set; three orthogonal
// bits layered on top carry Global+LoadGlobal (as one pair), UserPerm0, and
// one format-specific extra bit (AccessSystemRegisters, LoadMutable, or
// StoreLocalCapability). Exe splits into two formats rather than stealing a
// fourth orthogonal bit, the same way MemRWCap/MemROCap/MemWOCap already
// split on Load/Store presence, so that an executable capability's
// AccessSystemRegisters and LoadMutable bits are both independently
// representable instead of one stomping the other. This is necessarily
// lossy in general: 12 permission bits do not fit the 6-bit compressed
// field, which is the reason the format table exists at all.
type permFormat uint8

const (
	fmtSeal permFormat = iota
	fmtExe
	fmtExeMutable
	fmtMemRWCap
	fmtMemROCap
	fmtMemWOCap
	fmtMemData
	numFormats
)

var formatBase = [numFormats]Perm{
	fmtSeal:       PermSeal | PermUnseal,
	fmtExe:        PermExecute | PermLoad | PermLoadStoreCapability,
	fmtExeMutable: PermExecute | PermLoad | PermLoadStoreCapability | PermLoadMutable,
	fmtMemRWCap:   PermLoad | PermStore | PermLoadStoreCapability,
	fmtMemROCap:   PermLoad | PermLoadStoreCapability,
	fmtMemWOCap:   PermStore | PermLoadStoreCapability,
	fmtMemData:    PermLoad | PermStore,
}

// formatExtra is the orthogonal "bit2" permission each format exposes.
var formatExtra = [numFormats]Perm{
	fmtSeal:       0,
	fmtExe:        PermAccessSystemRegisters,
	fmtExeMutable: PermAccessSystemRegisters,
	fmtMemRWCap:   PermLoadMutable,
	fmtMemROCap:   PermLoadMutable,
	fmtMemWOCap:   PermStoreLocalCapability,
	fmtMemData:    PermStoreLocalCapability,
}

const (
	orthoGlobal Perm = 0x1 // packs Global and LoadGlobal together
	orthoUser0  Perm = 0x2
	orthoExtra  Perm = 0x4
)

// selectFormat picks the canonical shape that best covers p, per the
// priority order in which the formats are checked.
func selectFormat(p Perm) permFormat {
	switch {
	case p.Has(PermExecute):
		if p.Has(PermLoadMutable) {
			return fmtExeMutable
		}
		return fmtExe
	case p.Has(PermSeal) || p.Has(PermUnseal):
		return fmtSeal
	case p.Has(PermLoad) && p.Has(PermStore) && p.Has(PermLoadStoreCapability):
		return fmtMemRWCap
	case p.Has(PermLoad) && p.Has(PermLoadStoreCapability):
		return fmtMemROCap
	case p.Has(PermStore) && p.Has(PermLoadStoreCapability):
		return fmtMemWOCap
	default:
		return fmtMemData
	}
}

// encodePerm packs Permissions into the 6-bit compressed permission field.
func encodePerm(p Perm) uint32 {
	f := selectFormat(p)
	var ortho Perm
	if p.Has(PermGlobal) || p.Has(PermLoadGlobal) {
		ortho |= orthoGlobal
	}
	if p.Has(PermUserPerm0) {
		ortho |= orthoUser0
	}
	if formatExtra[f] != 0 && p.Has(formatExtra[f]) {
		ortho |= orthoExtra
	}
	return uint32(f)<<3 | uint32(ortho)
}

// decodePerm is the inverse of encodePerm: it always yields a canonical,
// representable permission set.
func decodePerm(field uint32) Perm {
	f := permFormat((field >> 3) & 0x7)
	if f >= numFormats {
		f = fmtMemData
	}
	ortho := Perm(field & 0x7)
	p := formatBase[f]
	if ortho&orthoGlobal != 0 {
		p |= PermGlobal | PermLoadGlobal
	}
	if ortho&orthoUser0 != 0 {
		p |= PermUserPerm0
	}
	if ortho&orthoExtra != 0 {
		p |= formatExtra[f]
	}
	return p
}

// impliedObjectType recomputes the high object-type bit from the current
// Execute permission, per spec 4.1's "synthesize the implicit 4th bit"
// tie-break: executable sealed classes are 1..7, non-executable are 9..15,
// and 0 always means unsealed regardless of Execute.
func impliedObjectType(cur uint8, p Perm) uint8 {
	low3 := cur & 0x7
	if low3 == 0 {
		return OTypeUnsealed
	}
	if p.Has(PermExecute) {
		return low3
	}
	return low3 | 0x8
}

const (
	shiftBase   = 0
	shiftTop    = 9
	shiftExp    = 18
	shiftOType  = 22
	shiftPerm   = 25
	shiftReserv = 31

	mask9 = 0x1FF
	mask4 = 0xF
)

// Compress emits the compressed 32-bit form (spec 4.1). A capability whose
// bounds were set by SetBounds always has base/top aligned to its
// exponent's granule, so the 9-bit mantissas are exact; the address word
// that accompanies this value in memory is what makes expansion total.
func (c *Cap) Compress() uint32 {
	e := c.exponent
	eField := e
	if e >= 15 && e != 24 {
		eField = 14
	}
	if e == 24 {
		eField = 15
	}

	granule := uint64(1) << minUint8(e, 31)
	if e >= 32 {
		granule = maxTop
	}
	baseMantissa := uint32((c.base / granule)) & mask9
	topMantissa := uint32((c.top / granule)) & mask9

	var out uint32
	out |= baseMantissa << shiftBase
	out |= topMantissa << shiftTop
	out |= uint32(eField&mask4) << shiftExp
	out |= uint32(c.ObjectType&0x7) << shiftOType
	out |= encodePerm(c.Permissions) << shiftPerm
	if c.Reserved {
		out |= 1 << shiftReserv
	}
	return out
}

// decodeFields splits a compressed word into its raw components.
func decodeFields(word uint32) (exponent uint8, perms Perm, otypeLow3 uint8, permField uint32, reserved bool) {
	eField := uint8((word >> shiftExp) & mask4)
	exponent = eField
	if eField == 15 {
		exponent = 24
	}
	permField = (word >> shiftPerm) & 0x3F
	perms = decodePerm(permField)
	otypeLow3 = uint8((word >> shiftOType) & 0x7)
	reserved = (word>>shiftReserv)&1 != 0
	return
}

// Expand is the inverse of Compress: given the accompanying address word
// and the compressed form, it reconstructs a full expanded capability. It
// is total — every 32-bit compressed value plus address yields a
// deterministic result (spec 4.1); representability is not re-checked here,
// matching the spec's note that the tag should already be false for any
// inconsistent combination produced upstream.
func Expand(address uint32, compressed uint32, tag bool) Cap {
	var c Cap
	c.Address = address
	c.Tag = tag

	if compressed == 0 && !tag {
		return c
	}

	e, perms, otypeLow3, _, reserved := decodeFields(compressed)
	c.exponent = e
	c.Permissions = perms
	c.Reserved = reserved
	c.ObjectType = impliedObjectType(otypeLow3, perms)

	baseMantissa := uint64((compressed >> shiftBase) & mask9)
	topMantissa := uint64((compressed >> shiftTop) & mask9)

	granule := uint64(1) << minUint8(e, 31)
	if e >= 32 {
		granule = maxTop
	}

	aMid := (uint64(address) / granule) & mask9
	aHigh := uint64(address) / granule / (mask9 + 1)

	baseHigh := aHigh
	if baseMantissa > aMid {
		if baseHigh > 0 {
			baseHigh--
		}
	}
	topHigh := aHigh
	if topMantissa < aMid {
		topHigh++
	}

	c.base = clampTop((baseHigh*(mask9+1) + baseMantissa) * granule)
	c.top = clampTop((topHigh*(mask9+1) + topMantissa) * granule)
	if c.top < c.base {
		c.top = maxTop
	}

	return c
}
