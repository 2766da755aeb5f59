// Package logexp computes natural exponentials, natural logarithms and
// fractional powers of 18-decimal fixed-point numbers using integer arithmetic
// only.
//
// Arguments are reduced against a fixed table of powers of e, leaving a small
// residual that is handled by a truncated series. The number of terms is fixed,
// so every call costs the same and the error is bounded. exp(ln(x)) returns x
// within 1e-17 relative error. ln(exp(x)) returns x within 1e-14 relative error
// for x >= -10; below that e^x keeps few significant digits and the error is
// about 1e-18/e^x in absolute terms.
//
// Signed values are *big.Int constrained to the int256 range; every division
// truncates toward zero.
package logexp

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	hundred = big.NewInt(100)
	one18   = big.NewInt(1e18)
	one20   = new(big.Int).Exp(big.NewInt(10), big.NewInt(20), nil)
	one36   = new(big.Int).Exp(big.NewInt(10), big.NewInt(36), nil)

	// Exp arguments are bounded so the result fits in 256 bits and keeps at
	// least one significant digit.
	maxNaturalExponent = new(big.Int).Mul(big.NewInt(130), one18)
	minNaturalExponent = new(big.Int).Mul(big.NewInt(-41), one18)

	// Inside (0.9, 1.1) logarithms are computed with 36 decimals.
	ln36LowerBound = big.NewInt(9e17)
	ln36UpperBound = big.NewInt(11e17)

	int256Bound       = new(big.Int).Lsh(big.NewInt(1), 255)
	mildExponentBound = new(big.Int).Quo(new(big.Int).Lsh(big.NewInt(1), 254), one20)

	seriesDivisors = [...]int64{3, 5, 7, 9, 11, 13, 15}
)

// MaxNaturalExponent returns the largest argument accepted by Exp.
func MaxNaturalExponent() *big.Int { return new(big.Int).Set(maxNaturalExponent) }

// MinNaturalExponent returns the smallest argument accepted by Exp.
func MinNaturalExponent() *big.Int { return new(big.Int).Set(minNaturalExponent) }

// Exp returns e^x for an 18-decimal x in [-41, 130].
func Exp(x *big.Int) (*big.Int, error) {
	if x.Cmp(minNaturalExponent) < 0 || x.Cmp(maxNaturalExponent) > 0 {
		return nil, fmt.Errorf("exponent %s: %w", x, ErrOutOfDomain)
	}
	return exp(x), nil
}

// Ln returns the natural logarithm of an 18-decimal a > 0.
func Ln(a *big.Int) (*big.Int, error) {
	if err := checkLogArgument(a); err != nil {
		return nil, err
	}
	if inLn36Range(a) {
		l := ln36(a)
		return l.Quo(l, one18), nil
	}
	return ln(a), nil
}

// Log returns the logarithm of arg in the given base, both 18-decimal.
func Log(arg, base *big.Int) (*big.Int, error) {
	if err := checkLogArgument(arg); err != nil {
		return nil, err
	}
	if err := checkLogArgument(base); err != nil {
		return nil, err
	}
	logBase := ln36Scaled(base)
	if logBase.Sign() == 0 {
		return nil, fmt.Errorf("logarithm base %s: %w", base, ErrOutOfDomain)
	}
	logArg := ln36Scaled(arg)
	logArg.Mul(logArg, one18)
	return logArg.Quo(logArg, logBase), nil
}

// Pow returns x^y for 18-decimal x and y, computed as exp(y * ln(x)).
// The result is not rounded in either direction; callers that need a bound
// widen it themselves.
func Pow(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return uint256.NewInt(1e18), nil
	}
	if x.IsZero() {
		return new(uint256.Int), nil
	}

	xb := x.ToBig()
	if xb.Cmp(int256Bound) >= 0 {
		return nil, fmt.Errorf("base %s: %w", x, ErrOutOfDomain)
	}
	yb := y.ToBig()
	if yb.Cmp(mildExponentBound) >= 0 {
		return nil, fmt.Errorf("exponent %s: %w", y, ErrOutOfDomain)
	}

	var logxTimesY *big.Int
	if inLn36Range(xb) {
		// Split the 36-decimal logarithm so the extra precision survives the
		// multiplication by y without overflowing int256.
		quo, rem := new(big.Int).QuoRem(ln36(xb), one18, new(big.Int))
		logxTimesY = quo.Mul(quo, yb)
		rem.Mul(rem, yb)
		logxTimesY.Add(logxTimesY, rem.Quo(rem, one18))
	} else {
		logxTimesY = ln(xb)
		logxTimesY.Mul(logxTimesY, yb)
	}
	logxTimesY.Quo(logxTimesY, one18)

	if logxTimesY.Cmp(minNaturalExponent) < 0 || logxTimesY.Cmp(maxNaturalExponent) > 0 {
		return nil, fmt.Errorf("product y*ln(x) %s: %w", logxTimesY, ErrOutOfDomain)
	}
	z, overflow := uint256.FromBig(exp(logxTimesY))
	if overflow {
		return nil, fmt.Errorf("power %s^%s: %w", x, y, ErrOutOfDomain)
	}
	return z, nil
}

func checkLogArgument(a *big.Int) error {
	if a.Sign() <= 0 || a.Cmp(int256Bound) >= 0 {
		return fmt.Errorf("logarithm argument %s: %w", a, ErrOutOfDomain)
	}
	return nil
}

func inLn36Range(a *big.Int) bool {
	return ln36LowerBound.Cmp(a) < 0 && a.Cmp(ln36UpperBound) < 0
}

// ln36Scaled returns ln(a) with 36 decimals.
func ln36Scaled(a *big.Int) *big.Int {
	if inLn36Range(a) {
		return ln36(a)
	}
	l := ln(a)
	return l.Mul(l, one18)
}

func exp(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		// e^(-x) = 1/e^x, and the positive side is the precise one.
		inverse := exp(new(big.Int).Neg(x))
		return inverse.Quo(one36, inverse)
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	for _, t := range wideTerms {
		if x.Cmp(t.x) >= 0 {
			x.Sub(x, t.x)
			firstAN = t.a
			break
		}
	}

	// From here on x and every intermediate carry 20 decimals.
	x.Mul(x, hundred)

	product := new(big.Int).Set(one20)
	for _, t := range terms[:8] {
		if x.Cmp(t.x) >= 0 {
			x.Sub(x, t.x)
			product.Mul(product, t.a)
			product.Quo(product, one20)
		}
	}

	// x is now below 2^-3 and the Taylor series converges in 12 terms.
	seriesSum := new(big.Int).Add(one20, x)
	term := new(big.Int).Set(x)
	divisor := new(big.Int)
	for i := int64(2); i <= 12; i++ {
		term.Mul(term, x)
		term.Quo(term, one20)
		term.Quo(term, divisor.SetInt64(i))
		seriesSum.Add(seriesSum, term)
	}

	product.Mul(product, seriesSum)
	product.Quo(product, one20)
	product.Mul(product, firstAN)
	return product.Quo(product, hundred)
}

func ln(a *big.Int) *big.Int {
	if a.Cmp(one18) < 0 {
		// ln(a) = -ln(1/a), and the argument above one is the precise side.
		inverse := new(big.Int).Quo(one36, a)
		return inverse.Neg(ln(inverse))
	}

	a = new(big.Int).Set(a)
	sum := new(big.Int)
	threshold := new(big.Int)
	for _, t := range wideTerms {
		if a.Cmp(threshold.Mul(t.a, one18)) >= 0 {
			a.Quo(a, t.a)
			sum.Add(sum, t.x)
		}
	}

	sum.Mul(sum, hundred)
	a.Mul(a, hundred)

	for _, t := range terms {
		if a.Cmp(t.a) >= 0 {
			a.Mul(a, one20)
			a.Quo(a, t.a)
			sum.Add(sum, t.x)
		}
	}

	// a is now in [1, e^(1/16)); ln(a) = 2 * atanh((a-1)/(a+1)).
	seriesSum := atanhSeries(a, one20, 5)
	sum.Add(sum, seriesSum)
	return sum.Quo(sum, hundred)
}

func ln36(x *big.Int) *big.Int {
	scaled := new(big.Int).Mul(x, one18)
	return atanhSeries(scaled, one36, 7)
}

// atanhSeries returns 2 * sum(z^(2k+1) / (2k+1)) for z = (a-one)/(a+one),
// using the first n odd divisors after the leading term.
func atanhSeries(a, one *big.Int, n int) *big.Int {
	z := new(big.Int).Sub(a, one)
	z.Mul(z, one)
	z.Quo(z, new(big.Int).Add(a, one))

	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(z)
	step := new(big.Int)
	divisor := new(big.Int)
	for _, d := range seriesDivisors[:n] {
		num.Mul(num, zSquared)
		num.Quo(num, one)
		seriesSum.Add(seriesSum, step.Quo(num, divisor.SetInt64(d)))
	}
	return seriesSum.Add(seriesSum, seriesSum)
}
