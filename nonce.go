package p256k1

// maxNonceRetries bounds the RFC 6979 retry loop. Rejection only happens
// when a candidate lands outside [1, n-1] (probability ~2^-128) or the
// caller's validator rejects it (for ECDSA, only when r or s comes out
// zero, similarly negligible); running out signals a bug, not bad luck.
const maxNonceRetries = 1000

// NonceValidator inspects a deterministically-generated candidate nonce
// and reports whether it is acceptable. ECDSA's sign path uses this to
// reject candidates that would yield r == 0 or s == 0.
type NonceValidator func(k *Scalar) bool

// bits2octets reduces h modulo n and returns its 32-byte big-endian form,
// per RFC 6979 §2.3.4. Scalar.setB32 already reduces mod n, and n's bit
// length equals 256, so no additional shifting is needed.
func bits2octets(h []byte) [32]byte {
	var e Scalar
	var padded [32]byte
	copy(padded[32-len(h):], h)
	if len(h) > 32 {
		e.setB32(h[:32])
	} else {
		e.setB32(padded[:])
	}
	var out [32]byte
	e.getB32(out[:])
	return out
}

// generateRFC6979Nonce derives a deterministic nonce k from a private key
// and message hash following RFC 6979 §3.2, with optional extra entropy
// appended after bits2octets(h) and a caller-supplied acceptance check.
// extras lets a caller add domain separation or defense-in-depth
// randomness while remaining deterministic when omitted.
func generateRFC6979Nonce(seckey, msghash []byte, extras [][]byte, validate NonceValidator) (*Scalar, error) {
	key := make([]byte, 0, 64+32*len(extras))
	key = append(key, seckey...)
	octets := bits2octets(msghash)
	key = append(key, octets[:]...)
	for _, extra := range extras {
		key = append(key, extra...)
	}

	rng := NewRFC6979HMACSHA256(key)
	memclear1(key)

	var k Scalar
	for attempt := 0; attempt < maxNonceRetries; attempt++ {
		var candidate [32]byte
		rng.Generate(candidate[:])

		overflow := k.setB32(candidate[:])
		memclear1(candidate[:])

		if overflow || k.isZero() {
			continue
		}
		if validate != nil && !validate(&k) {
			continue
		}

		rng.Finalize()
		rng.Clear()
		return &k, nil
	}

	rng.Finalize()
	rng.Clear()
	return nil, newError(ErrKindProbabilityExhausted, "RFC 6979 nonce search exceeded retry bound")
}

func memclear1(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
