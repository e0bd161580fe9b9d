package p256k1

import (
	"bytes"
	"testing"
)

func TestECPubkeyParseSerializeRoundTrip(t *testing.T) {
	seckey, pubkey, err := ECKeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}
	_ = seckey

	var compressed [33]byte
	if err := ECPubkeySerialize(compressed[:], pubkey, ECCompressed); err != nil {
		t.Fatalf("failed to serialize compressed: %v", err)
	}

	var reparsed PublicKey
	if err := ECPubkeyParse(&reparsed, compressed[:]); err != nil {
		t.Fatalf("failed to parse compressed: %v", err)
	}
	if ECPubkeyCmp(pubkey, &reparsed) != 0 {
		t.Error("compressed round-trip produced a different key")
	}

	var uncompressed [65]byte
	if err := ECPubkeySerialize(uncompressed[:], pubkey, ECUncompressed); err != nil {
		t.Fatalf("failed to serialize uncompressed: %v", err)
	}

	var reparsedUncompressed PublicKey
	if err := ECPubkeyParse(&reparsedUncompressed, uncompressed[:]); err != nil {
		t.Fatalf("failed to parse uncompressed: %v", err)
	}
	if ECPubkeyCmp(pubkey, &reparsedUncompressed) != 0 {
		t.Error("uncompressed round-trip produced a different key")
	}
}

func TestECPubkeyParseRejectsBadPrefix(t *testing.T) {
	var pk PublicKey
	bad := make([]byte, 33)
	bad[0] = 0x05
	if err := ECPubkeyParse(&pk, bad); err == nil {
		t.Error("bad compressed prefix should be rejected")
	}

	bad65 := make([]byte, 65)
	bad65[0] = 0x05
	if err := ECPubkeyParse(&pk, bad65); err == nil {
		t.Error("bad uncompressed prefix should be rejected")
	}
}

func TestECPubkeyParseRejectsWrongLength(t *testing.T) {
	var pk PublicKey
	if err := ECPubkeyParse(&pk, make([]byte, 10)); err == nil {
		t.Error("wrong length should be rejected")
	}
	if err := ECPubkeyParse(&pk, nil); err == nil {
		t.Error("empty input should be rejected")
	}
}

func TestECPubkeySerializeRejectsSmallBuffer(t *testing.T) {
	_, pubkey, err := ECKeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}
	if err := ECPubkeySerialize(make([]byte, 10), pubkey, ECCompressed); err == nil {
		t.Error("undersized buffer should be rejected")
	}
}

func TestECPubkeyCreateDeterministic(t *testing.T) {
	seckey := bytes.Repeat([]byte{0x07}, 32)

	var a, b PublicKey
	if err := ECPubkeyCreate(&a, seckey); err != nil {
		t.Fatalf("failed to create pubkey: %v", err)
	}
	if err := ECPubkeyCreate(&b, seckey); err != nil {
		t.Fatalf("failed to create pubkey: %v", err)
	}
	if ECPubkeyCmp(&a, &b) != 0 {
		t.Error("same secret key should produce the same public key every time")
	}
}

func TestECPubkeyCreateRejectsWrongLength(t *testing.T) {
	var pk PublicKey
	if err := ECPubkeyCreate(&pk, make([]byte, 31)); err == nil {
		t.Error("31-byte private key should be rejected")
	}
}

func TestECPubkeyCreateRejectsZeroKey(t *testing.T) {
	var pk PublicKey
	if err := ECPubkeyCreate(&pk, make([]byte, 32)); err == nil {
		t.Error("zero private key should be rejected")
	}
}
