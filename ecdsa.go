package p256k1

import (
	"errors"
	"math/bits"
)

// ECDSASignature is a parsed ECDSA signature (r, s).
type ECDSASignature struct {
	R, S Scalar
}

// SignOptions controls ECDSASign's output shape.
type SignOptions struct {
	// Canonical requests low-s normalization: if s > n/2, it is replaced
	// with n-s and the recovery parity is flipped to match.
	Canonical bool
	// ExtraEntropy, when non-nil, is folded into the RFC 6979 nonce
	// derivation as additional entropy, after bits2octets(h).
	ExtraEntropy []byte
}

// hashToScalarMod reduces a hash of any length to a scalar mod n, taking
// the leading 32 bytes if longer, or left-padding if shorter, matching
// ECDSA's usual "big-endian integer mod n" convention for odd-length hashes.
func hashToScalarMod(h []byte) Scalar {
	var buf [32]byte
	if len(h) >= 32 {
		copy(buf[:], h[:32])
	} else {
		copy(buf[32-len(h):], h)
	}
	var s Scalar
	s.setB32(buf[:])
	return s
}

// ECDSASign signs msghash (of any length, reduced mod n) with seckey,
// deriving the nonce deterministically per RFC 6979. The returned
// recovery value encodes R's y-parity and x-overflow per recoverPublicKey's
// contract.
func ECDSASign(msghash []byte, seckey []byte, opts SignOptions) (sig *ECDSASignature, recovery int, err error) {
	if len(seckey) != 32 {
		return nil, 0, newError(ErrKindInvalidPrivateKey, "private key must be 32 bytes")
	}

	var sec Scalar
	if !sec.setB32Seckey(seckey) {
		return nil, 0, newError(ErrKindInvalidPrivateKey, "scalar is zero or >= n")
	}

	e := hashToScalarMod(msghash)

	var extras [][]byte
	if opts.ExtraEntropy != nil {
		extras = [][]byte{opts.ExtraEntropy}
	}

	result := &ECDSASignature{}
	var rOverflow bool

	validator := func(k *Scalar) bool {
		var rp GroupElementJacobian
		EcmultGen(&rp, k)

		var rAff GroupElementAffine
		rAff.setGEJ(&rp)
		rAff.x.normalize()
		rAff.y.normalize()

		var rBytes [32]byte
		rAff.x.getB32(rBytes[:])
		rOverflow = result.R.setB32(rBytes[:])
		if result.R.isZero() {
			return false
		}

		var kInv Scalar
		kInv.inverse(k)

		var tmp Scalar
		tmp.mul(&result.R, &sec)
		tmp.add(&tmp, &e)
		result.S.mul(&kInv, &tmp)

		kInv.clear()
		tmp.clear()
		rAff.clear()
		rp.clear()

		return !result.S.isZero()
	}

	k, err := generateRFC6979Nonce(seckey, msghash, extras, validator)
	if err != nil {
		sec.clear()
		return nil, 0, err
	}

	var rYOdd bool
	{
		var rp GroupElementJacobian
		EcmultGen(&rp, k)
		var rAff GroupElementAffine
		rAff.setGEJ(&rp)
		rAff.y.normalize()
		rYOdd = rAff.y.isOdd()
		rAff.clear()
		rp.clear()
	}

	recovery = 0
	if rYOdd {
		recovery |= 1
	}
	if rOverflow {
		recovery |= 2
	}

	if opts.Canonical && result.S.isHigh() {
		result.S.negate(&result.S)
		recovery ^= 1
	}

	sec.clear()
	e.clear()
	k.clear()

	return result, recovery, nil
}

// ECDSAVerify reports whether sig is a valid ECDSA signature over msghash
// for pubkey. Never errors: any malformed input is simply rejected.
func ECDSAVerify(sig *ECDSASignature, msghash []byte, pubkey *PublicKey) bool {
	if sig == nil || pubkey == nil {
		return false
	}
	if sig.R.isZero() || sig.S.isZero() {
		return false
	}

	e := hashToScalarMod(msghash)

	var pubPoint GroupElementAffine
	pubPoint.fromBytes(pubkey.data[:])
	if pubPoint.isInfinity() || !pubPoint.isValid() {
		return false
	}

	var sInv Scalar
	sInv.inverse(&sig.S)

	var u1, u2 Scalar
	u1.mul(&e, &sInv)
	u2.mul(&sig.R, &sInv)

	var rPoint GroupElementJacobian
	Ecmult(&rPoint, &u1, &u2, &pubPoint)

	if rPoint.isInfinity() {
		return false
	}

	var rAff GroupElementAffine
	rAff.setGEJ(&rPoint)
	rAff.x.normalize()

	var rBytes [32]byte
	rAff.x.getB32(rBytes[:])

	var computedR Scalar
	computedR.setB32(rBytes[:])

	return sig.R.equal(&computedR)
}

// RecoverPublicKey recovers the public key that would make sig a valid
// signature over msghash, given the recovery value produced by ECDSASign.
func RecoverPublicKey(msghash []byte, sig *ECDSASignature, recovery int) (*PublicKey, error) {
	if sig == nil {
		return nil, newError(ErrKindInvalidSignature, "nil signature")
	}
	if sig.R.isZero() || sig.S.isZero() {
		return nil, newError(ErrKindInvalidSignature, "r or s is zero")
	}
	if recovery < 0 || recovery > 3 {
		return nil, newError(ErrKindInvalidSignature, "recovery id out of range")
	}

	j := (recovery >> 1) & 1
	parity := recovery & 1

	var rBytes [32]byte
	sig.R.getB32(rBytes[:])

	var x FieldElement
	if err := x.setB32(rBytes[:]); err != nil {
		return nil, newError(ErrKindNoSolution, "r does not fit in the field")
	}
	if j == 1 {
		var orderAdd FieldElement
		if err := addGroupOrderToField(&x, &orderAdd); err != nil {
			return nil, newError(ErrKindNoSolution, "r + n overflows the field")
		}
		x = orderAdd
	}

	var rPoint GroupElementAffine
	if !rPoint.setXOVar(&x, parity == 1) {
		return nil, newError(ErrKindNoSolution, "r does not correspond to a curve point")
	}

	e := hashToScalarMod(msghash)

	var rInv Scalar
	rInv.inverse(&sig.R)

	var u1, u2 Scalar
	u1.mul(&e, &rInv)
	u1.negate(&u1)
	u2.mul(&sig.S, &rInv)

	var qPoint GroupElementJacobian
	Ecmult(&qPoint, &u1, &u2, &rPoint)

	if qPoint.isInfinity() {
		return nil, newError(ErrKindNoSolution, "recovered point is the point at infinity")
	}

	var qAff GroupElementAffine
	qAff.setGEJ(&qPoint)

	pubkey := &PublicKey{}
	qAff.toBytes(pubkey.data[:])

	return pubkey, nil
}

// addGroupOrderToField computes out = x + n as true integers, used when
// recovering a point whose x-coordinate overflowed the group order
// (recovery id's high bit). Per the recovery algorithm's x <- r + j*n
// step, the candidate is rejected if the sum is >= the field prime p
// rather than silently wrapped.
func addGroupOrderToField(x *FieldElement, out *FieldElement) error {
	var xBytes [32]byte
	x.normalize()
	x.getB32(xBytes[:])

	xd0 := readBE64(xBytes[24:32])
	xd1 := readBE64(xBytes[16:24])
	xd2 := readBE64(xBytes[8:16])
	xd3 := readBE64(xBytes[0:8])

	var s0, s1, s2, s3, carry uint64
	s0, carry = bits.Add64(xd0, scalarN0, 0)
	s1, carry = bits.Add64(xd1, scalarN1, carry)
	s2, carry = bits.Add64(xd2, scalarN2, carry)
	s3, carry = bits.Add64(xd3, scalarN3, carry)
	if carry != 0 {
		return errors.New("x + n overflows 256 bits, exceeds field prime")
	}

	var sumBytes [32]byte
	writeBE64(sumBytes[0:8], s3)
	writeBE64(sumBytes[8:16], s2)
	writeBE64(sumBytes[16:24], s1)
	writeBE64(sumBytes[24:32], s0)

	return out.setB32(sumBytes[:])
}

// ECDSASignatureCompact is the 64-byte r||s compact signature encoding.
type ECDSASignatureCompact [64]byte

// ToDER encodes sig as a DER byte string.
func (sig *ECDSASignature) ToDER() []byte {
	return EncodeDER(&sig.R, &sig.S)
}

// ECDSASignatureFromDER parses a strict-DER ECDSA signature.
func ECDSASignatureFromDER(der []byte) (*ECDSASignature, error) {
	r, s, err := ParseDERStrict(der)
	if err != nil {
		return nil, err
	}
	return &ECDSASignature{R: *r, S: *s}, nil
}

// ToCompact encodes sig as a 64-byte r||s pair.
func (sig *ECDSASignature) ToCompact() *ECDSASignatureCompact {
	var compact ECDSASignatureCompact
	sig.R.getB32(compact[:32])
	sig.S.getB32(compact[32:])
	return &compact
}

// ECDSASignatureFromCompact parses a 64-byte r||s pair.
func ECDSASignatureFromCompact(compact []byte) (*ECDSASignature, error) {
	if len(compact) != 64 {
		return nil, newError(ErrKindInvalidSignature, "compact signature must be 64 bytes")
	}
	var sig ECDSASignature
	rOverflow := sig.R.setB32(compact[:32])
	sOverflow := sig.S.setB32(compact[32:64])
	if rOverflow || sOverflow || sig.R.isZero() || sig.S.isZero() {
		return nil, newError(ErrKindInvalidSignature, "r or s out of range")
	}
	return &sig, nil
}

// ECDSAVerifyCompact verifies a 64-byte compact signature.
func ECDSAVerifyCompact(compact []byte, msghash []byte, pubkey *PublicKey) bool {
	sig, err := ECDSASignatureFromCompact(compact)
	if err != nil {
		return false
	}
	return ECDSAVerify(sig, msghash, pubkey)
}
