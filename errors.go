package p256k1

// ErrorKind classifies the errors this package returns, so callers can
// branch on the kind of failure without depending on message text.
type ErrorKind string

const (
	// ErrKindInvalidPrivateKey: scalar zero or >= n, or wrong byte length.
	ErrKindInvalidPrivateKey ErrorKind = "InvalidPrivateKey"
	// ErrKindInvalidPublicKey: wrong length, unknown prefix, x >= p,
	// off-curve, no square root on decompression, or identity when
	// identity is forbidden.
	ErrKindInvalidPublicKey ErrorKind = "InvalidPublicKey"
	// ErrKindInvalidSignature: wrong length, malformed DER, r or s out of range.
	ErrKindInvalidSignature ErrorKind = "InvalidSignature"
	// ErrKindInvalidHash: wrong hash length (32 B required for Schnorr).
	ErrKindInvalidHash ErrorKind = "InvalidHash"
	// ErrKindNoSolution: recoverPublicKey produced identity or no valid point.
	ErrKindNoSolution ErrorKind = "NoSolution"
	// ErrKindProbabilityExhausted: Schnorr self-verify failed, or a
	// bounded retry loop (RFC 6979 nonce search) ran out of attempts.
	// Astronomically unlikely; signals a bug if ever observed.
	ErrKindProbabilityExhausted ErrorKind = "ProbabilityExhausted"
)

// Error is the concrete error type returned by this package's entry
// points. Kind is meant for programmatic branching; Description carries
// the human-readable detail.
type Error struct {
	Kind        ErrorKind
	Description string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Description
}

func newError(kind ErrorKind, description string) *Error {
	return &Error{Kind: kind, Description: description}
}

// IsErrorKind reports whether err is an *Error of the given kind.
func IsErrorKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
