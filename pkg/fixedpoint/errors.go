package fixedpoint

import "errors"

var (
	ErrOverflow       = errors.New("fixed point overflow")
	ErrUnderflow      = errors.New("fixed point underflow")
	ErrDivisionByZero = errors.New("fixed point division by zero")
	ErrInvalidDecimal = errors.New("invalid decimal value")
)
