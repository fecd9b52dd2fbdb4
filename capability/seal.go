package capability

// legalOType reports whether otype is in the permitted range for target's
// class: executable targets take sentries/sealed-exe classes 1..7,
// non-executable targets take data-sealing classes 9..15 (spec 4.1).
func legalOType(targetExecutable bool, otype uint8) bool {
	if targetExecutable {
		return otype >= 1 && otype <= 7
	}
	return otype >= OTypeDataSealedMin && otype <= OTypeDataSealedMax
}

// Seal seals target using authority with object type otype, per spec 4.1.
// On any precondition failure the target's tag is cleared and the specific
// violation is returned; on success ObjectType is set and the target
// remains tagged.
func Seal(target *Cap, authority *Cap, otype uint8) Fault {
	fail := func(f Fault) Fault {
		target.Tag = false
		return f
	}

	if !target.Tag {
		return fail(FaultTagViolation)
	}
	if target.IsSealed() {
		return fail(FaultSealViolation)
	}
	if !authority.Tag {
		return fail(FaultTagViolation)
	}
	if authority.IsSealed() {
		return fail(FaultSealViolation)
	}
	if !authority.Permissions.Has(PermSeal) {
		return fail(FaultPermitSealViolation)
	}
	if !authority.IsRepresentable() {
		return fail(FaultBoundsViolation)
	}
	if !legalOType(target.Permissions.Has(PermExecute), otype&0xF) {
		return fail(FaultPermitSealViolation)
	}

	target.ObjectType = otype & 0xF
	return FaultNone
}

// Unseal reverses Seal: target must be sealed by otype via authority, which
// must hold Unseal and have its address equal to target's object type and
// lie within its own bounds (spec 4.1). On success ObjectType returns to 0
// and Global may be cleared per testable property 6 if authority lacks it.
func Unseal(target *Cap, authority *Cap, otype uint8) Fault {
	fail := func(f Fault) Fault {
		target.Tag = false
		return f
	}

	if !target.Tag {
		return fail(FaultTagViolation)
	}
	if target.IsUnsealed() {
		return fail(FaultSealViolation)
	}
	if !authority.Tag {
		return fail(FaultTagViolation)
	}
	if authority.IsSealed() {
		return fail(FaultSealViolation)
	}
	if !authority.Permissions.Has(PermUnseal) {
		return fail(FaultPermitUnsealViolation)
	}
	if authority.Address != uint32(target.ObjectType) {
		return fail(FaultPermitUnsealViolation)
	}
	if otype&0xF != target.ObjectType {
		return fail(FaultPermitUnsealViolation)
	}
	if !authority.IsRepresentable() {
		return fail(FaultBoundsViolation)
	}

	target.ObjectType = OTypeUnsealed
	if !authority.Permissions.Has(PermGlobal) {
		target.Permissions &^= PermGlobal
	}
	return FaultNone
}
