package weighted

import "errors"

var (
	// ErrExcessiveAmount is returned when an amount exceeds the share of a
	// balance (or of the invariant) that a single operation may move.
	ErrExcessiveAmount = errors.New("amount exceeds allowed fraction of balance")
	// ErrExcessiveOutput is returned when a requested output would drain a
	// balance.
	ErrExcessiveOutput = errors.New("requested output exceeds balance")
	ErrInvalidWeights  = errors.New("invalid normalized weights")
	ErrInvalidFee      = errors.New("invalid swap fee")
	ErrInvalidPool     = errors.New("invalid pool")
	ErrZeroInvariant   = errors.New("zero invariant")
	ErrLengthMismatch  = errors.New("input length mismatch")
	ErrUnknownKind     = errors.New("unknown operation kind")
	ErrTokenIndex      = errors.New("token index out of range")

	// ErrInvalidPriceRatio is returned for a zero price ratio.
	ErrInvalidPriceRatio = errors.New("price ratio must be positive")
)
