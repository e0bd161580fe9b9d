package p256k1

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// These tests cross-validate this package's ECDSA and Schnorr implementations
// against btcec/v2, an independent secp256k1 implementation, rather than
// exercising the package in isolation.

func TestCrossValidateSchnorrSignWithBtcec(t *testing.T) {
	seckey := make([]byte, 32)
	for {
		if _, err := rand.Read(seckey); err != nil {
			t.Fatal(err)
		}
		if ECSeckeyVerify(seckey) {
			break
		}
	}

	kp, err := KeyPairCreate(seckey)
	if err != nil {
		t.Fatalf("failed to create keypair: %v", err)
	}
	defer kp.Clear()

	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	msg := make([]byte, 32)
	if _, err := rand.Read(msg); err != nil {
		t.Fatal(err)
	}

	var sig [64]byte
	if err := SchnorrSign(sig[:], msg, kp, nil); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	xonlyBytes := xonly.Serialize()
	btcecPub, err := schnorr.ParsePubKey(xonlyBytes[:])
	if err != nil {
		t.Fatalf("btcec failed to parse x-only pubkey: %v", err)
	}

	btcecSig, err := schnorr.ParseSignature(sig[:])
	if err != nil {
		t.Fatalf("btcec failed to parse signature: %v", err)
	}

	if !btcecSig.Verify(msg, btcecPub) {
		t.Error("btcec rejected a signature this package produced")
	}
}

func TestCrossValidateSchnorrVerifyAgainstBtcec(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("btcec failed to generate private key: %v", err)
	}

	// Normalize to even y, matching this package's BIP-340 convention, so
	// the raw secret bytes can be fed into this package's signer directly.
	pubBytes := privKey.PubKey().SerializeCompressed()
	if pubBytes[0] == 0x03 {
		scalar := privKey.Key
		scalar.Negate()
		privKey = &btcec.PrivateKey{Key: scalar}
	}

	seckey := privKey.Serialize()

	msg := make([]byte, 32)
	if _, err := rand.Read(msg); err != nil {
		t.Fatal(err)
	}

	btcecSig, err := schnorr.Sign(privKey, msg)
	if err != nil {
		t.Fatalf("btcec failed to sign: %v", err)
	}

	kp, err := KeyPairCreate(seckey)
	if err != nil {
		t.Fatalf("failed to create keypair: %v", err)
	}
	defer kp.Clear()

	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	if !SchnorrVerify(btcecSig.Serialize(), msg, xonly) {
		t.Error("this package rejected a signature btcec produced")
	}
}

func TestCrossValidateECDSASignWithBtcec(t *testing.T) {
	seckey := make([]byte, 32)
	for {
		if _, err := rand.Read(seckey); err != nil {
			t.Fatal(err)
		}
		if ECSeckeyVerify(seckey) {
			break
		}
	}

	var pubkey PublicKey
	if err := ECPubkeyCreate(&pubkey, seckey); err != nil {
		t.Fatalf("failed to create public key: %v", err)
	}

	var compressed [33]byte
	if err := ECPubkeySerialize(compressed[:], &pubkey, ECCompressed); err != nil {
		t.Fatalf("failed to serialize public key: %v", err)
	}

	btcecPub, err := btcec.ParsePubKey(compressed[:])
	if err != nil {
		t.Fatalf("btcec failed to parse public key: %v", err)
	}

	msghash := make([]byte, 32)
	if _, err := rand.Read(msghash); err != nil {
		t.Fatal(err)
	}

	sig, _, err := ECDSASign(msghash, seckey, SignOptions{Canonical: true})
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	btcecSig, err := btcecdsa.ParseDERSignature(sig.ToDER())
	if err != nil {
		t.Fatalf("btcec failed to parse DER signature: %v", err)
	}

	if !btcecSig.Verify(msghash, btcecPub) {
		t.Error("btcec rejected an ECDSA signature this package produced")
	}
}

func TestCrossValidateECDSAVerifyAgainstBtcec(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("btcec failed to generate private key: %v", err)
	}
	seckey := privKey.Serialize()

	var pubkey PublicKey
	if err := ECPubkeyCreate(&pubkey, seckey); err != nil {
		t.Fatalf("failed to create public key: %v", err)
	}

	msghash := make([]byte, 32)
	if _, err := rand.Read(msghash); err != nil {
		t.Fatal(err)
	}

	btcecSig := btcecdsa.Sign(privKey, msghash)

	parsed, err := ECDSASignatureFromDER(btcecSig.Serialize())
	if err != nil {
		t.Fatalf("failed to parse btcec's DER signature: %v", err)
	}

	if !ECDSAVerify(parsed, msghash, &pubkey) {
		t.Error("this package rejected an ECDSA signature btcec produced")
	}
}

func TestCrossValidatePublicKeyDerivation(t *testing.T) {
	seckey := make([]byte, 32)
	for {
		if _, err := rand.Read(seckey); err != nil {
			t.Fatal(err)
		}
		if ECSeckeyVerify(seckey) {
			break
		}
	}

	var pubkey PublicKey
	if err := ECPubkeyCreate(&pubkey, seckey); err != nil {
		t.Fatalf("failed to create public key: %v", err)
	}

	var uncompressed [65]byte
	if err := ECPubkeySerialize(uncompressed[:], &pubkey, ECUncompressed); err != nil {
		t.Fatalf("failed to serialize public key: %v", err)
	}

	btcecPriv, _ := btcec.PrivKeyFromBytes(seckey)
	btcecUncompressed := btcecPriv.PubKey().SerializeUncompressed()

	if !bytes.Equal(uncompressed[:], btcecUncompressed) {
		t.Errorf("public key derivation mismatch:\ngot  %x\nwant %x", uncompressed, btcecUncompressed)
	}
}
