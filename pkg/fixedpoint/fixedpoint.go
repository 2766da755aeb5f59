// Package fixedpoint implements checked 18-decimal fixed-point arithmetic on
// 256-bit unsigned integers.
//
// Values entering a pool are rounded up and values leaving it are rounded
// down, so every multiplication and division comes in a Down and an Up
// variant. Callers pick the one that favours the pool.
package fixedpoint

import "github.com/holiman/uint256"

// Decimals is the number of decimal digits carried by a FixedDecimal.
const Decimals = 18

var (
	one  = uint256.NewInt(1e18)
	half = uint256.NewInt(5e17)
)

// One returns 1.0.
func One() *uint256.Int {
	return new(uint256.Int).Set(one)
}

// FromUint64 returns the FixedDecimal for the whole number n.
func FromUint64(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), one)
}

func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	if b.Gt(a) {
		return nil, ErrUnderflow
	}
	return new(uint256.Int).Sub(a, b), nil
}

// MulDown returns a*b/1e18 rounded toward zero.
func MulDown(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, one), nil
}

// MulUp returns a*b/1e18 rounded away from zero.
func MulUp(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	if product.IsZero() {
		return product, nil
	}
	// ((product - 1) / ONE) + 1 cannot overflow
	product.SubUint64(product, 1)
	product.Div(product, one)
	return product.AddUint64(product, 1), nil
}

// Mul returns a*b/1e18 rounded half up.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = product.AddOverflow(product, half); overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, one), nil
}

// DivDown returns a*1e18/b rounded toward zero.
func DivDown(a, b *uint256.Int) (*uint256.Int, error) {
	inflated, err := inflate(a, b)
	if err != nil || inflated.IsZero() {
		return inflated, err
	}
	return inflated.Div(inflated, b), nil
}

// DivUp returns a*1e18/b rounded away from zero.
func DivUp(a, b *uint256.Int) (*uint256.Int, error) {
	inflated, err := inflate(a, b)
	if err != nil || inflated.IsZero() {
		return inflated, err
	}
	inflated.SubUint64(inflated, 1)
	inflated.Div(inflated, b)
	return inflated.AddUint64(inflated, 1), nil
}

// Div returns a*1e18/b rounded half up.
func Div(a, b *uint256.Int) (*uint256.Int, error) {
	inflated, err := inflate(a, b)
	if err != nil || inflated.IsZero() {
		return inflated, err
	}
	halfB := new(uint256.Int).Rsh(b, 1)
	if _, overflow := inflated.AddOverflow(inflated, halfB); overflow {
		return nil, ErrOverflow
	}
	return inflated.Div(inflated, b), nil
}

func inflate(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	inflated, overflow := new(uint256.Int).MulOverflow(a, one)
	if overflow {
		return nil, ErrOverflow
	}
	return inflated, nil
}

// MulDivDown returns a*b/c rounded toward zero. The product is kept at 512
// bits, so only a quotient wider than 256 bits overflows.
func MulDivDown(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, c)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MulDivUp returns a*b/c rounded away from zero.
func MulDivUp(a, b, c *uint256.Int) (*uint256.Int, error) {
	z, err := MulDivDown(a, b, c)
	if err != nil {
		return nil, err
	}
	if new(uint256.Int).MulMod(a, b, c).IsZero() {
		return z, nil
	}
	return Add(z, uint256.NewInt(1))
}

// Complement returns 1-x, or 0 when x >= 1.
func Complement(x *uint256.Int) *uint256.Int {
	if x.Lt(one) {
		return new(uint256.Int).Sub(one, x)
	}
	return new(uint256.Int)
}

// Sqrt returns the integer floor square root of x, so that
// Sqrt(x)^2 <= x < (Sqrt(x)+1)^2.
func Sqrt(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sqrt(x)
}
