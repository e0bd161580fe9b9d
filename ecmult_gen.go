package p256k1

import (
	"sync"
)

// Fixed-base scalar multiplication for the generator point G, using an
// 8-bit windowed precomputed table. For each of the 32 byte positions the
// table holds, at row entry v, the point (v+1) * 2^(8*(31-byteNum)) * G —
// shifted up by one multiple so every entry is a genuine point and row
// selection never needs an identity special case. Multiplication walks the
// scalar's bytes MSB to LSB, scans each byte's row with a branchless mask
// instead of indexing it directly, and subtracts a fixed correction point
// (the sum of all 32 shifts) once at the end to undo the shift. Memory
// access and control flow do not depend on the scalar's value.

const (
	genTableBytes      = 32
	genTableRowEntries = 256
)

type genTablePoint struct {
	x, y [32]byte
}

type genTableRow [genTableRowEntries]genTablePoint

// EcmultGenContext holds the precomputed byte-table for generator
// multiplication. The zero value is not initialized; use NewEcmultGenContext,
// or call EcmultGen which uses the process-wide lazily-built context.
type EcmultGenContext struct {
	rows        [genTableBytes]genTableRow
	offset      genTablePoint
	initialized bool
}

var (
	globalGenContext *EcmultGenContext
	genContextOnce   sync.Once
)

// build constructs the byte table: rows[byteNum][v] = (v+1) * 2^(8*(31-byteNum)) * G,
// plus the fixed correction point offset = sum over byteNum of 1 * 2^(8*(31-byteNum)) * G
// that ecmultGen subtracts to undo the per-row shift.
func (ctx *EcmultGenContext) build() {
	var gJac GroupElementJacobian
	gJac.setGE(&Generator)

	var byteBases [genTableBytes]GroupElementJacobian
	byteBases[genTableBytes-1] = gJac
	for i := genTableBytes - 2; i >= 0; i-- {
		byteBases[i] = byteBases[i+1]
		for j := 0; j < 8; j++ {
			byteBases[i].double(&byteBases[i])
		}
	}

	var offsetJac GroupElementJacobian
	offsetJac.setInfinity()

	for byteNum := 0; byteNum < genTableBytes; byteNum++ {
		base := byteBases[byteNum]
		offsetJac.addVar(&offsetJac, &base)

		acc := base
		var accAff GroupElementAffine
		accAff.setGEJ(&acc)
		accAff.x.normalize()
		accAff.y.normalize()
		accAff.x.getB32(ctx.rows[byteNum][0].x[:])
		accAff.y.getB32(ctx.rows[byteNum][0].y[:])

		for v := 1; v < genTableRowEntries; v++ {
			acc.addVar(&acc, &base)
			accAff.setGEJ(&acc)
			accAff.x.normalize()
			accAff.y.normalize()
			accAff.x.getB32(ctx.rows[byteNum][v].x[:])
			accAff.y.getB32(ctx.rows[byteNum][v].y[:])
		}
	}

	var offsetAff GroupElementAffine
	offsetAff.setGEJ(&offsetJac)
	offsetAff.x.normalize()
	offsetAff.y.normalize()
	offsetAff.x.getB32(ctx.offset.x[:])
	offsetAff.y.getB32(ctx.offset.y[:])

	ctx.initialized = true
}

// NewEcmultGenContext builds a fresh, independent generator-multiplication
// context. Most callers want EcmultGen, which shares the process-wide cache;
// this is exposed for tests and for callers who need an isolated table.
func NewEcmultGenContext() *EcmultGenContext {
	ctx := &EcmultGenContext{}
	ctx.build()
	return ctx
}

func getGlobalGenContext() *EcmultGenContext {
	genContextOnce.Do(func() {
		globalGenContext = &EcmultGenContext{}
		globalGenContext.build()
	})
	return globalGenContext
}

// subtleByteEq returns 0xFF if a == b, else 0x00, with no data-dependent
// branch.
func subtleByteEq(a, b byte) byte {
	diff := a ^ b
	diff |= diff >> 4
	diff |= diff >> 2
	diff |= diff >> 1
	return (diff & 1) - 1
}

func cmovBytes32(dst *[32]byte, src *[32]byte, mask byte) {
	for i := range dst {
		dst[i] ^= mask & (dst[i] ^ src[i])
	}
}

// selectRow scans every entry of a 256-entry table row and returns the one
// at index v, without ever using v to address memory directly.
func selectRow(row *genTableRow, v byte) (x, y [32]byte) {
	for i := 0; i < genTableRowEntries; i++ {
		mask := subtleByteEq(byte(i), v)
		cmovBytes32(&x, &row[i].x, mask)
		cmovBytes32(&y, &row[i].y, mask)
	}
	return
}

// ecmultGen computes r = n*G in constant time with respect to n: every byte
// position touches its full table row and every row contributes a term
// unconditionally (table rows hold shifted multiples, never the identity,
// so decoding the selected entry never needs to branch on the byte's
// value), so running time and memory access pattern do not depend on n's
// value. The fixed shift introduced by the table is undone by subtracting
// the context's precomputed, non-secret correction point.
func (ctx *EcmultGenContext) ecmultGen(r *GroupElementJacobian, n *Scalar) {
	if !ctx.initialized {
		panic("ecmult_gen context not initialized")
	}

	var scalarBytes [32]byte
	n.getB32(scalarBytes[:])

	var sum GroupElementJacobian
	sum.setInfinity()
	for byteNum := 0; byteNum < genTableBytes; byteNum++ {
		xb, yb := selectRow(&ctx.rows[byteNum], scalarBytes[byteNum])

		var x, y FieldElement
		x.setB32(xb[:])
		y.setB32(yb[:])
		var aff GroupElementAffine
		aff.setXY(&x, &y)

		var term GroupElementJacobian
		term.setGE(&aff)
		sum.addVar(&sum, &term)
	}

	var offsetX, offsetY FieldElement
	offsetX.setB32(ctx.offset.x[:])
	offsetY.setB32(ctx.offset.y[:])
	var offsetAff GroupElementAffine
	offsetAff.setXY(&offsetX, &offsetY)
	offsetAff.negate(&offsetAff)

	var negOffset GroupElementJacobian
	negOffset.setGE(&offsetAff)
	sum.addVar(&sum, &negOffset)

	*r = sum
}

// EcmultGen computes r = n*G using the process-wide precomputed table,
// building it on first use. sync.Once guards the build, so concurrent
// first callers block on the same build rather than racing to perform it.
func EcmultGen(r *GroupElementJacobian, n *Scalar) {
	ctx := getGlobalGenContext()
	ctx.ecmultGen(r, n)
}
