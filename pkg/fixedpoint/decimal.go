package fixedpoint

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Parse converts a decimal string such as "0.8" or "2500.125" into a
// FixedDecimal. Negative values and values with more than 18 fractional
// digits are rejected.
func Parse(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidDecimal, s)
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidDecimal, s, Decimals)
	}
	z, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MustParse is like Parse but panics on error. Intended for constants and
// tests.
func MustParse(s string) *uint256.Int {
	z, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return z
}

// Format renders a FixedDecimal as a plain decimal string without trailing
// zeros.
func Format(x *uint256.Int) string {
	return decimal.NewFromBigInt(x.ToBig(), -Decimals).String()
}

// Upscale converts a raw token amount into an 18-decimal value using the
// token's scaling factor (10^(18-decimals), itself 18-decimal).
func Upscale(amount, scalingFactor *uint256.Int) (*uint256.Int, error) {
	return MulDown(amount, scalingFactor)
}

// DownscaleDown converts an 18-decimal value back to raw token units,
// rounding down. Used for amounts leaving the pool.
func DownscaleDown(amount, scalingFactor *uint256.Int) (*uint256.Int, error) {
	return DivDown(amount, scalingFactor)
}

// DownscaleUp converts an 18-decimal value back to raw token units,
// rounding up. Used for amounts entering the pool.
func DownscaleUp(amount, scalingFactor *uint256.Int) (*uint256.Int, error) {
	return DivUp(amount, scalingFactor)
}
