package p256k1

import (
	"bytes"
	"testing"
)

func TestDERRoundTrip(t *testing.T) {
	var r, s Scalar
	r.setB32(bytes.Repeat([]byte{0x11}, 32))
	s.setB32(bytes.Repeat([]byte{0x22}, 32))

	der := EncodeDER(&r, &s)

	gotR, gotS, err := ParseDERStrict(der)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if !gotR.equal(&r) || !gotS.equal(&s) {
		t.Error("round-tripped (r, s) does not match original")
	}
}

func TestDERHighBitPadding(t *testing.T) {
	// A scalar whose leading byte has its high bit set must be emitted
	// with a leading 0x00 so it isn't mistaken for a negative INTEGER.
	var r, s Scalar
	highBit := make([]byte, 32)
	highBit[0] = 0xFF
	highBit[31] = 0x01
	r.setB32(highBit)
	s.setB32(bytes.Repeat([]byte{0x01}, 32))

	der := EncodeDER(&r, &s)

	// r's INTEGER content should start with 0x00 then 0xFF...
	if der[2] != 0x02 {
		t.Fatalf("expected INTEGER tag, got %#x", der[2])
	}
	rLen := int(der[3])
	rContent := der[4 : 4+rLen]
	if rContent[0] != 0x00 {
		t.Errorf("expected leading 0x00 pad byte, got %#x", rContent[0])
	}

	gotR, gotS, err := ParseDERStrict(der)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if !gotR.equal(&r) || !gotS.equal(&s) {
		t.Error("round-tripped (r, s) does not match original")
	}
}

func TestDERRejectsNonMinimalPadding(t *testing.T) {
	// A superfluous leading 0x00 before a byte whose high bit is clear
	// is a non-minimal encoding and must be rejected.
	sig := []byte{
		0x30, 0x08,
		0x02, 0x02, 0x00, 0x01, // r: non-minimal
		0x02, 0x02, 0x00, 0x01, // s
	}
	if _, _, err := ParseDERStrict(sig); err == nil {
		t.Error("non-minimal r encoding should be rejected")
	}
}

func TestDERRejectsTrailingBytes(t *testing.T) {
	var r, s Scalar
	r.setB32(bytes.Repeat([]byte{0x11}, 32))
	s.setB32(bytes.Repeat([]byte{0x22}, 32))
	der := EncodeDER(&r, &s)
	der = append(der, 0xFF)

	if _, _, err := ParseDERStrict(der); err == nil {
		t.Error("trailing bytes should be rejected")
	}
}

func TestDERRejectsWrongTag(t *testing.T) {
	sig := []byte{0x31, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}
	if _, _, err := ParseDERStrict(sig); err == nil {
		t.Error("wrong outer tag should be rejected")
	}
}

func TestDERRejectsZeroScalar(t *testing.T) {
	sig := []byte{
		0x30, 0x06,
		0x02, 0x01, 0x00, // r = 0
		0x02, 0x01, 0x01,
	}
	if _, _, err := ParseDERStrict(sig); err == nil {
		t.Error("r = 0 should be rejected")
	}
}

func TestDERRejectsTooShort(t *testing.T) {
	if _, _, err := ParseDERStrict([]byte{0x30, 0x02}); err == nil {
		t.Error("truncated signature should be rejected")
	}
}
