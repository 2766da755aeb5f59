package fixedpoint

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/logexp"
)

// MaxPowRelativeError is the relative error (1e-14) that PowDown and PowUp
// add on top of the logexp approximation.
const MaxPowRelativeError = 10_000

// MaxIntegerExponent is the largest whole exponent evaluated by repeated
// squaring instead of exp/ln.
const MaxIntegerExponent = 64

var maxPowRelativeError = uint256.NewInt(MaxPowRelativeError)

// PowDown returns a value no larger than x^y.
func PowDown(x, y *uint256.Int) (*uint256.Int, error) {
	if n, ok := wholeExponent(y); ok {
		return PowInt(x, n, false)
	}
	raw, maxError, err := powWithError(x, y)
	if err != nil {
		return nil, err
	}
	if raw.Lt(maxError) {
		return new(uint256.Int), nil
	}
	return raw.Sub(raw, maxError), nil
}

// PowUp returns a value no smaller than x^y.
func PowUp(x, y *uint256.Int) (*uint256.Int, error) {
	if n, ok := wholeExponent(y); ok {
		return PowInt(x, n, true)
	}
	raw, maxError, err := powWithError(x, y)
	if err != nil {
		return nil, err
	}
	return Add(raw, maxError)
}

// PowInt returns x^n by repeated squaring, rounding every step down or up.
// No transcendental functions are involved.
func PowInt(x *uint256.Int, n uint64, roundUp bool) (*uint256.Int, error) {
	mul := MulDown
	if roundUp {
		mul = MulUp
	}

	var err error
	result := One()
	base := new(uint256.Int).Set(x)
	for n > 0 {
		if n&1 == 1 {
			if result, err = mul(result, base); err != nil {
				return nil, err
			}
		}
		n >>= 1
		if n > 0 {
			if base, err = mul(base, base); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func powWithError(x, y *uint256.Int) (raw, maxError *uint256.Int, err error) {
	raw, err = logexp.Pow(x, y)
	if err != nil {
		return nil, nil, err
	}
	maxError, err = MulUp(raw, maxPowRelativeError)
	if err != nil {
		return nil, nil, err
	}
	return raw, maxError.AddUint64(maxError, 1), nil
}

func wholeExponent(y *uint256.Int) (uint64, bool) {
	quo, rem := new(uint256.Int).DivMod(y, one, new(uint256.Int))
	if !rem.IsZero() || quo.GtUint64(MaxIntegerExponent) {
		return 0, false
	}
	return quo.Uint64(), true
}
