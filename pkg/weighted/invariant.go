package weighted

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/logexp"
)

var one18 = big.NewInt(1e18)

// Invariant returns prod(balance_i ^ weight_i), rounded down.
//
// Two-token pools multiply two powers directly. Larger pools sum
// weight_i * ln(balance_i) and take a single exponential, which keeps the
// cost at one exp regardless of the token count.
func Invariant(weights, balances []*uint256.Int) (*uint256.Int, error) {
	if len(weights) != len(balances) {
		return nil, fmt.Errorf("%w: %d weights, %d balances", ErrLengthMismatch, len(weights), len(balances))
	}
	if len(weights) < MinTokens {
		return nil, fmt.Errorf("%w: %d tokens", ErrInvalidPool, len(weights))
	}
	for _, b := range balances {
		if b.IsZero() {
			return nil, ErrZeroInvariant
		}
	}

	var (
		invariant *uint256.Int
		err       error
	)
	if len(weights) == 2 {
		invariant, err = twoTokenInvariant(weights, balances)
	} else {
		invariant, err = logSumInvariant(weights, balances)
	}
	if err != nil {
		return nil, err
	}
	if invariant.IsZero() {
		return nil, ErrZeroInvariant
	}
	return invariant, nil
}

func twoTokenInvariant(weights, balances []*uint256.Int) (*uint256.Int, error) {
	a, err := fixedpoint.PowDown(balances[0], weights[0])
	if err != nil {
		return nil, err
	}
	b, err := fixedpoint.PowDown(balances[1], weights[1])
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDown(a, b)
}

func logSumInvariant(weights, balances []*uint256.Int) (*uint256.Int, error) {
	sum := new(big.Int)
	for i, b := range balances {
		l, err := logexp.Ln(b.ToBig())
		if err != nil {
			return nil, err
		}
		sum.Add(sum, l.Mul(l, weights[i].ToBig()))
	}
	sum.Quo(sum, one18)

	raw, err := logexp.Exp(sum)
	if err != nil {
		return nil, err
	}
	invariant, overflow := uint256.FromBig(raw)
	if overflow {
		return nil, fixedpoint.ErrOverflow
	}

	// Same margin PowDown applies to a single power.
	margin, err := fixedpoint.MulUp(invariant, uint256.NewInt(fixedpoint.MaxPowRelativeError))
	if err != nil {
		return nil, err
	}
	margin.AddUint64(margin, 1)
	if invariant.Lt(margin) {
		return new(uint256.Int), nil
	}
	return invariant.Sub(invariant, margin), nil
}
