package p256k1

// DER encoding/decoding for ECDSA signatures: SEQUENCE { INTEGER r, INTEGER s },
// strict on parse (reject non-minimal encodings), minimal-only on emit.

const derMaxContentLen = 70 // 2 * (2-byte INTEGER header + 33-byte content)

// scalarToMinimalBytes returns the minimal big-endian encoding of s's
// value, prefixed with 0x00 when the high bit of the leading byte would
// otherwise be mistaken for a sign bit.
func scalarToMinimalBytes(s *Scalar) []byte {
	var full [32]byte
	s.getB32(full[:])

	i := 0
	for i < 31 && full[i] == 0 {
		i++
	}
	v := full[i:]

	if v[0]&0x80 != 0 {
		out := make([]byte, len(v)+1)
		out[0] = 0x00
		copy(out[1:], v)
		return out
	}
	return v
}

func encodeDERInteger(s *Scalar) []byte {
	content := scalarToMinimalBytes(s)
	out := make([]byte, 2+len(content))
	out[0] = 0x02
	out[1] = byte(len(content))
	copy(out[2:], content)
	return out
}

// EncodeDER encodes (r, s) as a DER ECDSA signature.
func EncodeDER(r, s *Scalar) []byte {
	rInt := encodeDERInteger(r)
	sInt := encodeDERInteger(s)

	content := make([]byte, 0, len(rInt)+len(sInt))
	content = append(content, rInt...)
	content = append(content, sInt...)

	out := make([]byte, 0, 2+len(content))
	out = append(out, 0x30, byte(len(content)))
	out = append(out, content...)
	return out
}

// derIntegerToScalar converts a validated-minimal DER INTEGER's content
// bytes (without tag/length) into a Scalar in [1, n-1], rejecting values
// that are zero or >= n.
func derIntegerToScalar(content []byte) (*Scalar, bool) {
	v := content
	if len(v) > 0 && v[0] == 0x00 {
		v = v[1:]
	}
	if len(v) > 32 {
		return nil, false
	}

	var buf [32]byte
	copy(buf[32-len(v):], v)

	var s Scalar
	overflow := s.setB32(buf[:])
	if overflow || s.isZero() {
		return nil, false
	}
	return &s, true
}

// parseDERInteger reads a single strictly-minimal INTEGER starting at
// sig[pos], returning its content bytes and the offset just past it.
func parseDERInteger(sig []byte, pos int) (content []byte, next int, ok bool) {
	if pos+2 > len(sig) {
		return nil, 0, false
	}
	if sig[pos] != 0x02 {
		return nil, 0, false
	}
	length := int(sig[pos+1])
	if length == 0 || length >= 0x80 {
		return nil, 0, false
	}
	start := pos + 2
	end := start + length
	if end > len(sig) {
		return nil, 0, false
	}

	body := sig[start:end]

	// Reject non-minimal encodings: no superfluous leading 0x00 (a leading
	// 0x00 is only valid when the following byte's high bit is set), and
	// no negative values (DER signature integers are always unsigned here).
	if body[0]&0x80 != 0 {
		return nil, 0, false
	}
	if len(body) > 1 && body[0] == 0x00 && body[1]&0x80 == 0 {
		return nil, 0, false
	}

	return body, end, true
}

// ParseDERStrict parses a DER ECDSA signature, rejecting any non-minimal
// or malformed encoding.
func ParseDERStrict(sig []byte) (r, s *Scalar, err error) {
	if len(sig) < 8 || sig[0] != 0x30 {
		return nil, nil, newError(ErrKindInvalidSignature, "not a DER sequence")
	}

	seqLen := int(sig[1])
	if seqLen >= 0x80 || seqLen > derMaxContentLen {
		return nil, nil, newError(ErrKindInvalidSignature, "DER sequence length out of bounds")
	}
	if len(sig) != 2+seqLen {
		return nil, nil, newError(ErrKindInvalidSignature, "trailing or missing bytes after DER sequence")
	}

	rContent, pos, ok := parseDERInteger(sig, 2)
	if !ok {
		return nil, nil, newError(ErrKindInvalidSignature, "malformed r INTEGER")
	}
	sContent, pos, ok := parseDERInteger(sig, pos)
	if !ok {
		return nil, nil, newError(ErrKindInvalidSignature, "malformed s INTEGER")
	}
	if pos != len(sig) {
		return nil, nil, newError(ErrKindInvalidSignature, "trailing bytes after signature")
	}

	rScalar, ok := derIntegerToScalar(rContent)
	if !ok {
		return nil, nil, newError(ErrKindInvalidSignature, "r out of range")
	}
	sScalar, ok := derIntegerToScalar(sContent)
	if !ok {
		return nil, nil, newError(ErrKindInvalidSignature, "s out of range")
	}

	return rScalar, sScalar, nil
}
