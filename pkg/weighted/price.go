package weighted

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
)

// PostSwapBalancesGivenPriceRatio returns the balances the pool settles at
// once arbitrage has moved the external price of token i by priceRatio while
// every other price stays put.
//
// With value shares fixed by the weights, token i's balance scales by
// ratio^(w_i - 1) and every other balance by ratio^(w_i). A ratio of exactly
// one returns a copy of balances.
func PostSwapBalancesGivenPriceRatio(weights, balances []*uint256.Int, i int, priceRatio *uint256.Int) ([]*uint256.Int, error) {
	if len(weights) != len(balances) {
		return nil, ErrLengthMismatch
	}
	if err := checkIndex(i, len(balances)); err != nil {
		return nil, err
	}
	if priceRatio == nil || priceRatio.IsZero() {
		return nil, ErrInvalidPriceRatio
	}

	out := make([]*uint256.Int, len(balances))
	if priceRatio.Eq(fixedpoint.One()) {
		for j, b := range balances {
			out[j] = new(uint256.Int).Set(b)
		}
		return out, nil
	}

	// The token whose price moved is divided by a rounded-up factor, the
	// others multiplied by a rounded-down one: the pool never ends up richer
	// than the exact solution.
	shrink, err := fixedpoint.PowUp(priceRatio, fixedpoint.Complement(weights[i]))
	if err != nil {
		return nil, err
	}
	grow, err := fixedpoint.PowDown(priceRatio, weights[i])
	if err != nil {
		return nil, err
	}
	for j, b := range balances {
		if j == i {
			out[j], err = fixedpoint.DivDown(b, shrink)
		} else {
			out[j], err = fixedpoint.MulDown(b, grow)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
