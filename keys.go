package p256k1

import (
	"errors"
)

// PublicKey represents a secp256k1 public key in an opaque internal
// format (uncompressed x||y field elements). Use ECPubkeyParse and
// ECPubkeySerialize to convert to and from the standard SEC1 wire formats.
type PublicKey struct {
	data [64]byte
}

// Compression flags for public key serialization.
const (
	ECCompressed   = 0x02
	ECUncompressed = 0x04
)

// ECPubkeyParse parses a public key from its compressed (33-byte) or
// uncompressed (65-byte) SEC1 encoding.
func ECPubkeyParse(pubkey *PublicKey, input []byte) error {
	if len(input) == 0 {
		return errors.New("input cannot be empty")
	}

	var point GroupElementAffine

	switch len(input) {
	case 33:
		if input[0] != 0x02 && input[0] != 0x03 {
			return errors.New("invalid compressed public key prefix")
		}

		var x FieldElement
		if err := x.setB32(input[1:33]); err != nil {
			return err
		}

		odd := input[0] == 0x03
		if !point.setXOVar(&x, odd) {
			return errors.New("invalid public key")
		}

	case 65:
		if input[0] != 0x04 {
			return errors.New("invalid uncompressed public key prefix")
		}

		var x, y FieldElement
		if err := x.setB32(input[1:33]); err != nil {
			return err
		}
		if err := y.setB32(input[33:65]); err != nil {
			return err
		}

		point.setXY(&x, &y)

	default:
		return errors.New("invalid public key length")
	}

	if !point.isValid() {
		return errors.New("public key not on curve")
	}

	point.toBytes(pubkey.data[:])

	return nil
}

// ECPubkeySerialize writes the compressed or uncompressed SEC1 encoding of
// pubkey to output, returning the number of bytes written, or an error if
// output is too small or pubkey holds the point at infinity.
func ECPubkeySerialize(output []byte, pubkey *PublicKey, flags uint) error {
	var point GroupElementAffine
	point.fromBytes(pubkey.data[:])

	if point.isInfinity() {
		return errors.New("cannot serialize the point at infinity")
	}

	point.x.normalize()
	point.y.normalize()

	switch flags {
	case ECCompressed:
		if len(output) < 33 {
			return errors.New("output buffer too small")
		}
		if point.y.isOdd() {
			output[0] = 0x03
		} else {
			output[0] = 0x02
		}
		point.x.getB32(output[1:33])
		return nil

	case ECUncompressed:
		if len(output) < 65 {
			return errors.New("output buffer too small")
		}
		output[0] = 0x04
		point.x.getB32(output[1:33])
		point.y.getB32(output[33:65])
		return nil

	default:
		return errors.New("invalid serialization flags")
	}
}

// ECPubkeyCmp orders two public keys by their compressed encoding, after
// first checking whether they represent the same point.
func ECPubkeyCmp(pubkey1, pubkey2 *PublicKey) int {
	var point1, point2 GroupElementAffine
	point1.fromBytes(pubkey1.data[:])
	point2.fromBytes(pubkey2.data[:])

	if point1.equal(&point2) {
		return 0
	}

	var buf1, buf2 [33]byte
	_ = ECPubkeySerialize(buf1[:], pubkey1, ECCompressed)
	_ = ECPubkeySerialize(buf2[:], pubkey2, ECCompressed)

	for i := 0; i < 33; i++ {
		if buf1[i] < buf2[i] {
			return -1
		}
		if buf1[i] > buf2[i] {
			return 1
		}
	}

	return 0
}

// ECPubkeyCreate derives the public key pubkey = seckey*G for a 32-byte
// private key.
func ECPubkeyCreate(pubkey *PublicKey, seckey []byte) error {
	if len(seckey) != 32 {
		return errors.New("private key must be 32 bytes")
	}

	var scalar Scalar
	if !scalar.setB32Seckey(seckey) {
		return errors.New("invalid private key")
	}

	var point GroupElementJacobian
	EcmultGen(&point, &scalar)

	var affine GroupElementAffine
	affine.setGEJ(&point)
	affine.toBytes(pubkey.data[:])

	scalar.clear()
	point.clear()

	return nil
}

// pubkeyLoad loads a public key from its internal format.
func pubkeyLoad(point *GroupElementAffine, pubkey *PublicKey) {
	point.fromBytes(pubkey.data[:])
}

// pubkeySave saves a point to a public key's internal format.
func pubkeySave(pubkey *PublicKey, point *GroupElementAffine) {
	point.toBytes(pubkey.data[:])
}
