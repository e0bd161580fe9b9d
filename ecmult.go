package p256k1

import "errors"

var (
	errNotBuilt       = errors.New("ecmult: context not built")
	errLengthMismatch = errors.New("ecmult: scalars and points must have same length")
)

// Precomputed table configuration for variable-base scalar multiplication.
// Matches EcmultVar's own window width so MultVar can replay EcmultVar's
// windowing loop unchanged against a cached table.
const (
	ecmultCtxWindowSize = 5
	ecmultCtxTableSize  = 1 << ecmultCtxWindowSize // 32
)

// EcmultContext holds the table of multiples 0*P..31*P for a single point P,
// so repeated multiplications of that point by different scalars skip
// rebuilding the table every call.
type EcmultContext struct {
	table [ecmultCtxTableSize]GroupElementJacobian
	built bool
}

// NewEcmultContext creates a new context for general scalar multiplication.
func NewEcmultContext() *EcmultContext {
	return &EcmultContext{built: false}
}

// Build constructs the table of multiples of point, following the same
// odd-multiples-then-double construction EcmultVar uses internally.
func (ctx *EcmultContext) Build(point *GroupElementAffine) error {
	if ctx.built {
		return nil
	}

	var aJac GroupElementJacobian
	aJac.setGE(point)

	ctx.table[0].setInfinity()
	ctx.table[1] = aJac

	var twoA GroupElementJacobian
	twoA.double(&aJac)

	for i := 3; i < ecmultCtxTableSize; i += 2 {
		ctx.table[i].addVar(&ctx.table[i-2], &twoA)
	}
	for i := 1; i < ecmultCtxTableSize/2; i++ {
		ctx.table[2*i].double(&ctx.table[i])
	}

	ctx.built = true
	return nil
}

// MultVar computes r = k*P using this context's cached table. Not
// constant-time: window values index the table directly, which is
// acceptable for public points such as a signature's verification key.
func (ctx *EcmultContext) MultVar(r *GroupElementJacobian, k *Scalar) error {
	if !ctx.built {
		return errNotBuilt
	}

	if k.isZero() {
		r.setInfinity()
		return nil
	}

	r.setInfinity()
	numWindows := (256 + ecmultCtxWindowSize - 1) / ecmultCtxWindowSize

	for window := 0; window < numWindows; window++ {
		bitOffset := 255 - window*ecmultCtxWindowSize
		if bitOffset < 0 {
			break
		}

		actualWindowSize := ecmultCtxWindowSize
		if bitOffset < ecmultCtxWindowSize-1 {
			actualWindowSize = bitOffset + 1
		}

		windowBits := k.getBits(uint(bitOffset-actualWindowSize+1), uint(actualWindowSize))

		if !r.isInfinity() {
			for j := 0; j < actualWindowSize; j++ {
				r.double(r)
			}
		}

		if windowBits != 0 && int(windowBits) < ecmultCtxTableSize {
			if r.isInfinity() {
				*r = ctx.table[windowBits]
			} else {
				r.addVar(r, &ctx.table[windowBits])
			}
		}
	}
	return nil
}

// Clear wipes the cached table.
func (ctx *EcmultContext) Clear() {
	for i := range ctx.table {
		ctx.table[i].clear()
	}
	ctx.built = false
}

// EcmultVar performs variable-time scalar multiplication r = k*P using a
// 5-bit window over all 32 multiples 0*P..31*P, built from a table of odd
// Jacobian multiples doubled down to the even ones. Not constant-time:
// window values index the table directly. For public points only, such as
// verification keys in ECDSA/Schnorr verification and ECDH.
func EcmultVar(r *GroupElementJacobian, k *Scalar, p *GroupElementAffine) {
	if k.isZero() || p.infinity {
		r.setInfinity()
		return
	}

	const windowSize = 5
	const tableSize = 1 << windowSize // 32

	var aJac GroupElementJacobian
	aJac.setGE(p)

	var tableJac [tableSize]GroupElementJacobian
	tableJac[0].setInfinity()
	tableJac[1] = aJac

	var twoA GroupElementJacobian
	twoA.double(&aJac)

	for i := 3; i < tableSize; i += 2 {
		tableJac[i].addVar(&tableJac[i-2], &twoA)
	}
	for i := 1; i < tableSize/2; i++ {
		tableJac[2*i].double(&tableJac[i])
	}

	r.setInfinity()
	numWindows := (256 + windowSize - 1) / windowSize

	for window := 0; window < numWindows; window++ {
		bitOffset := 255 - window*windowSize
		if bitOffset < 0 {
			break
		}

		actualWindowSize := windowSize
		if bitOffset < windowSize-1 {
			actualWindowSize = bitOffset + 1
		}

		windowBits := k.getBits(uint(bitOffset-actualWindowSize+1), uint(actualWindowSize))

		if !r.isInfinity() {
			for j := 0; j < actualWindowSize; j++ {
				r.double(r)
			}
		}

		if windowBits != 0 && windowBits < tableSize {
			if r.isInfinity() {
				*r = tableJac[windowBits]
			} else {
				r.addVar(r, &tableJac[windowBits])
			}
		}
	}
}

// Ecmult computes r = a*G + b*P, the combined generator/arbitrary-point
// multiplication used by ECDSA verification. Not constant-time: both
// components operate on public values (the signature's scalars and the
// signer's public key).
func Ecmult(r *GroupElementJacobian, a *Scalar, b *Scalar, p *GroupElementAffine) {
	var aG, bP GroupElementJacobian

	if !a.isZero() {
		EcmultGen(&aG, a)
	} else {
		aG.setInfinity()
	}

	if !b.isZero() && !p.infinity {
		EcmultVar(&bP, b, p)
	} else {
		bP.setInfinity()
	}

	r.addVar(&aG, &bP)
}

// EcmultMulti computes r = sum(k[i] * P[i]) for equal-length slices of
// scalars and points, useful for batched verification.
func EcmultMulti(r *GroupElementJacobian, scalars []*Scalar, points []*GroupElementAffine) error {
	if len(scalars) != len(points) {
		return errLengthMismatch
	}

	r.setInfinity()
	for i := 0; i < len(scalars); i++ {
		if scalars[i].isZero() || points[i].infinity {
			continue
		}
		var temp GroupElementJacobian
		EcmultVar(&temp, scalars[i], points[i])
		r.addVar(r, &temp)
	}
	return nil
}
