package p256k1

import "encoding/binary"

// readBE64 reads a uint64 from p in big-endian order.
func readBE64(p []byte) uint64 {
	return binary.BigEndian.Uint64(p)
}

// writeBE64 writes x into p in big-endian order.
func writeBE64(p []byte, x uint64) {
	binary.BigEndian.PutUint64(p, x)
}
