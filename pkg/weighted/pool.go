// Package weighted implements the math of weighted constant-value pools: the
// invariant, swaps in both directions, and the join and exit family.
//
// All values are 18-decimal FixedDecimals (see package fixedpoint). Balances
// must already be scaled to 18 decimals. Each function rounds in the pool's
// favour: amounts paid to the pool round up, amounts paid out round down.
package weighted

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
)

const (
	MinTokens = 2
	MaxTokens = 50
)

var (
	minWeight  = fixedpoint.MustParse("0.01")
	maxSwapFee = fixedpoint.MustParse("0.1")

	// A swap may not move more than 30% of either balance.
	maxInRatio  = fixedpoint.MustParse("0.3")
	maxOutRatio = fixedpoint.MustParse("0.3")

	// Single-operation invariant growth and shrinkage limits for joins and
	// exits.
	maxInvariantRatio = fixedpoint.MustParse("3")
	minInvariantRatio = fixedpoint.MustParse("0.7")
)

// Pool is the state the math operates on: balances and normalized weights in
// token order, plus the swap fee percentage.
type Pool struct {
	Balances []*uint256.Int
	Weights  []*uint256.Int
	SwapFee  *uint256.Int
}

// Validate checks the token count, the weights and the fee.
func (p Pool) Validate() error {
	n := len(p.Weights)
	if n < MinTokens || n > MaxTokens {
		return fmt.Errorf("%w: %d tokens", ErrInvalidPool, n)
	}
	if len(p.Balances) != n {
		return fmt.Errorf("%w: %d balances for %d weights", ErrLengthMismatch, len(p.Balances), n)
	}
	if err := ValidateWeights(p.Weights); err != nil {
		return err
	}
	if p.SwapFee == nil || p.SwapFee.Gt(maxSwapFee) {
		return fmt.Errorf("%w: must be at most %s", ErrInvalidFee, fixedpoint.Format(maxSwapFee))
	}
	return nil
}

// ValidateWeights checks that every weight lies in [0.01, 1) and that the
// weights sum to one. Normalizing weights off-chain can lose up to one unit
// per token, so the sum may differ from one by at most len(weights) units.
func ValidateWeights(weights []*uint256.Int) error {
	one := fixedpoint.One()
	sum := new(uint256.Int)
	for i, w := range weights {
		if w == nil || w.Lt(minWeight) || !w.Lt(one) {
			return fmt.Errorf("%w: weight %d out of range", ErrInvalidWeights, i)
		}
		sum.Add(sum, w)
	}
	diff := new(uint256.Int)
	if sum.Gt(one) {
		diff.Sub(sum, one)
	} else {
		diff.Sub(one, sum)
	}
	if diff.GtUint64(uint64(len(weights))) {
		return fmt.Errorf("%w: sum is %s", ErrInvalidWeights, fixedpoint.Format(sum))
	}
	return nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d of %d", ErrTokenIndex, i, n)
	}
	return nil
}

func allZero(amounts []*uint256.Int) bool {
	for _, a := range amounts {
		if !a.IsZero() {
			return false
		}
	}
	return true
}

func zeros(n int) []*uint256.Int {
	out := make([]*uint256.Int, n)
	for i := range out {
		out[i] = new(uint256.Int)
	}
	return out
}

func orZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x
}
