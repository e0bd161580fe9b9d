package p256k1

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// DecodeHexOrBytes normalizes a caller-supplied key, hash, or signature
// given either as raw bytes or as its hex encoding, rejecting malformed
// hex (odd length, non-hex characters) at the boundary rather than letting
// it surface as an obscure arithmetic failure downstream.
func DecodeHexOrBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, errors.New("hex input must have even length")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.New("input is not valid hex")
	}
	return b, nil
}

// RandomPrivateKey returns 32 cryptographically random bytes forming a
// valid scalar in [1, n-1], rejection-sampling candidates that fall
// outside that range.
func RandomPrivateKey() ([]byte, error) {
	seckey := make([]byte, 32)
	for {
		if _, err := rand.Read(seckey); err != nil {
			return nil, err
		}
		if ECSeckeyVerify(seckey) {
			return seckey, nil
		}
	}
}

// precomputedTables caches variable-base multiplication tables keyed by a
// point's compressed encoding, so repeated Multiply calls against the same
// point reuse work instead of rebuilding it.
var precomputedTables = map[[33]byte]*EcmultContext{}

// Precompute warms (and returns) the table of multiples of p backing
// repeated variable-base scalar multiplications against it; a later call to
// p.Multiply consults this cache instead of rebuilding the table. The window
// width is fixed by EcmultContext; the parameter is accepted for interface
// parity with callers that want to request a specific width.
func Precompute(_ int, p *Point) (*Point, error) {
	var compressed [33]byte
	if err := p.ToRawBytesInto(compressed[:], true); err != nil {
		return nil, err
	}

	if _, ok := precomputedTables[compressed]; !ok {
		ctx := NewEcmultContext()
		if err := ctx.Build(&p.ge); err != nil {
			return nil, err
		}
		precomputedTables[compressed] = ctx
	}

	return p, nil
}

// Point wraps a curve point for the convenience API described by the
// public entry points (fromHex, fromPrivateKey, toRawBytes, and the group
// operations), layered over the lower-level GroupElementAffine/Jacobian
// arithmetic used throughout the rest of the package.
type Point struct {
	ge GroupElementAffine
}

// BasePoint is the curve's generator, G.
var BasePoint Point

// IdentityPoint is the point at infinity, the group's identity element.
var IdentityPoint Point

func init() {
	// Generator is itself populated by group.go's init(), which may run
	// before or after this one; assigning here (rather than at
	// var-declaration time) guarantees BasePoint sees the populated value
	// regardless of init ordering between the two files.
	BasePoint.ge = Generator
	IdentityPoint.ge.setInfinity()
}

// Curve collects the fixed secp256k1 domain parameters as big-endian byte
// strings, plus the base and identity points, for callers that want the
// constants without reaching into the field/scalar/group internals.
type Curve struct {
	// P is the field prime, 2^256 - 2^32 - 977, 32 bytes big-endian.
	P [32]byte
	// N is the group order, 32 bytes big-endian.
	N [32]byte
	// Base is the generator point G.
	Base Point
	// Identity is the point at infinity, O.
	Identity Point
}

// CURVE holds secp256k1's domain parameters.
var CURVE Curve

func init() {
	CURVE.Base = BasePoint
	CURVE.Identity = IdentityPoint

	p, err := hex.DecodeString("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	if err != nil {
		panic(err)
	}
	copy(CURVE.P[:], p)

	n, err := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	if err != nil {
		panic(err)
	}
	copy(CURVE.N[:], n)
}

// PointFromHex parses a point from its SEC1 hex encoding (compressed or
// uncompressed).
func PointFromHex(s string) (*Point, error) {
	b, err := DecodeHexOrBytes(s)
	if err != nil {
		return nil, err
	}
	return PointFromBytes(b)
}

// PointFromBytes parses a point from its SEC1 encoding (compressed or
// uncompressed).
func PointFromBytes(b []byte) (*Point, error) {
	var pk PublicKey
	if err := ECPubkeyParse(&pk, b); err != nil {
		return nil, newError(ErrKindInvalidPublicKey, err.Error())
	}
	var p Point
	pubkeyLoad(&p.ge, &pk)
	return &p, nil
}

// PointFromPrivateKey computes [d]G for a 32-byte private key.
func PointFromPrivateKey(seckey []byte) (*Point, error) {
	var pk PublicKey
	if err := ECPubkeyCreate(&pk, seckey); err != nil {
		return nil, newError(ErrKindInvalidPrivateKey, err.Error())
	}
	var p Point
	pubkeyLoad(&p.ge, &pk)
	return &p, nil
}

// PointFromSignature recovers the public key point that would make sig a
// valid ECDSA signature over msghash with the given recovery id.
func PointFromSignature(msghash []byte, sig *Signature, recovery int) (*Point, error) {
	pk, err := RecoverPublicKey(msghash, &sig.sig, recovery)
	if err != nil {
		return nil, err
	}
	var p Point
	pubkeyLoad(&p.ge, pk)
	return &p, nil
}

// ToRawBytes encodes the point as SEC1: compressed (33 bytes) or
// uncompressed (65 bytes).
func (p *Point) ToRawBytes(compressed bool) ([]byte, error) {
	size := 65
	if compressed {
		size = 33
	}
	out := make([]byte, size)
	if err := p.ToRawBytesInto(out, compressed); err != nil {
		return nil, err
	}
	return out, nil
}

// ToRawBytesInto is ToRawBytes without the allocation, for callers that
// already have a destination buffer (SEC1 compressed is exactly 33 bytes,
// uncompressed exactly 65).
func (p *Point) ToRawBytesInto(out []byte, compressed bool) error {
	var pk PublicKey
	pubkeySave(&pk, &p.ge)
	flags := uint(ECCompressed)
	if !compressed {
		flags = ECUncompressed
	}
	if err := ECPubkeySerialize(out, &pk, flags); err != nil {
		return newError(ErrKindInvalidPublicKey, err.Error())
	}
	return nil
}

// Equals reports whether p and q represent the same curve point.
func (p *Point) Equals(q *Point) bool {
	return p.ge.equal(&q.ge)
}

// Negate returns -p.
func (p *Point) Negate() *Point {
	var r Point
	r.ge.negate(&p.ge)
	return &r
}

// Add returns p + q.
func (p *Point) Add(q *Point) *Point {
	var pj GroupElementJacobian
	pj.setGE(&p.ge)
	var sum GroupElementJacobian
	sum.addGE(&pj, &q.ge)
	var r Point
	r.ge.setGEJ(&sum)
	return &r
}

// Subtract returns p - q.
func (p *Point) Subtract(q *Point) *Point {
	return p.Add(q.Negate())
}

// Multiply returns [k]p for a scalar given as 32 big-endian bytes. If p was
// previously warmed via Precompute, the cached table is reused instead of
// rebuilding it from scratch.
func (p *Point) Multiply(k []byte) (*Point, error) {
	var s Scalar
	if overflow := s.setB32(k); overflow {
		return nil, newError(ErrKindInvalidPrivateKey, "scalar overflows the group order")
	}
	if s.isZero() {
		return nil, newError(ErrKindInvalidPrivateKey, "scalar is zero")
	}

	var pj GroupElementJacobian

	var compressed [33]byte
	if err := p.ToRawBytesInto(compressed[:], true); err == nil {
		if ctx, ok := precomputedTables[compressed]; ok {
			if err := ctx.MultVar(&pj, &s); err != nil {
				return nil, err
			}
			var r Point
			r.ge.setGEJ(&pj)
			return &r, nil
		}
	}

	EcmultVar(&pj, &s, &p.ge)

	var r Point
	r.ge.setGEJ(&pj)
	return &r, nil
}

// Signature wraps an ECDSA signature for the fromDER/fromCompact/
// toDERRawBytes/toCompactRawBytes convenience API.
type Signature struct {
	sig ECDSASignature
}

// SignatureFromDER parses a strict-DER ECDSA signature.
func SignatureFromDER(der []byte) (*Signature, error) {
	sig, err := ECDSASignatureFromDER(der)
	if err != nil {
		return nil, err
	}
	return &Signature{sig: *sig}, nil
}

// SignatureFromCompact parses a 64-byte r||s signature.
func SignatureFromCompact(compact []byte) (*Signature, error) {
	sig, err := ECDSASignatureFromCompact(compact)
	if err != nil {
		return nil, err
	}
	return &Signature{sig: *sig}, nil
}

// ToDERRawBytes encodes the signature as DER.
func (s *Signature) ToDERRawBytes() []byte {
	return s.sig.ToDER()
}

// ToCompactRawBytes encodes the signature as 64-byte r||s.
func (s *Signature) ToCompactRawBytes() []byte {
	compact := s.sig.ToCompact()
	return compact[:]
}

// SignOpts controls Sign's output shape and nonce derivation, mirroring
// ECDSA's sign options plus the DER/recovered output switches.
type SignOpts struct {
	// Compact requests the 64-byte r||s encoding instead of the default
	// DER encoding.
	Compact bool
	// Canonical requests low-s normalization.
	Canonical bool
	// Recovered is accepted for interface parity with callers that
	// distinguish "signature only" from "signature and recovery id"; Sign
	// always returns both, so this has no effect on Go call sites.
	Recovered bool
	// ExtraEntropy, when non-nil, is folded into the RFC 6979 nonce.
	ExtraEntropy []byte
}

// GetPublicKey derives the SEC1-encoded public key for a 32-byte private
// key, compressed by default.
func GetPublicKey(seckey []byte, compressed bool) ([]byte, error) {
	p, err := PointFromPrivateKey(seckey)
	if err != nil {
		return nil, err
	}
	return p.ToRawBytes(compressed)
}

// Sign produces an ECDSA signature over msghash (taken mod n, any length)
// with seckey, encoded per opts. The zero value of SignOpts yields DER
// output, matching the package's default output shape.
func Sign(msghash, seckey []byte, opts SignOpts) (sig []byte, recovery int, err error) {
	signOpts := SignOptions{Canonical: opts.Canonical, ExtraEntropy: opts.ExtraEntropy}
	parsed, recovery, err := ECDSASign(msghash, seckey, signOpts)
	if err != nil {
		return nil, 0, err
	}

	if opts.Compact {
		compact := parsed.ToCompact()
		return compact[:], recovery, nil
	}
	return parsed.ToDER(), recovery, nil
}

// Verify reports whether sig (DER or 64-byte compact) is a valid ECDSA
// signature over msghash for the SEC1-encoded public key pubkey. Never
// errors: any malformed input is rejected by returning false.
func Verify(sig, msghash, pubkey []byte) bool {
	p, err := PointFromBytes(pubkey)
	if err != nil {
		return false
	}

	var pk PublicKey
	pubkeySave(&pk, &p.ge)

	var parsed *ECDSASignature
	switch len(sig) {
	case 64:
		parsed, err = ECDSASignatureFromCompact(sig)
	default:
		parsed, err = ECDSASignatureFromDER(sig)
	}
	if err != nil {
		return false
	}

	return ECDSAVerify(parsed, msghash, &pk)
}

// RecoverPublicKeyBytes recovers the SEC1-encoded public key (compressed)
// that would make sig a valid signature over msghash, given sig's
// recovery id.
func RecoverPublicKeyBytes(msghash, sig []byte, recovery int, compressed bool) ([]byte, error) {
	var parsed *ECDSASignature
	var err error
	switch len(sig) {
	case 64:
		parsed, err = ECDSASignatureFromCompact(sig)
	default:
		parsed, err = ECDSASignatureFromDER(sig)
	}
	if err != nil {
		return nil, err
	}

	pk, err := RecoverPublicKey(msghash, parsed, recovery)
	if err != nil {
		return nil, err
	}

	size := 65
	if compressed {
		size = 33
	}
	out := make([]byte, size)
	flags := uint(ECCompressed)
	if !compressed {
		flags = ECUncompressed
	}
	if err := ECPubkeySerialize(out, pk, flags); err != nil {
		return nil, err
	}
	return out, nil
}
