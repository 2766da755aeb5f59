package weighted

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
)

// Joins and exits that are not proportional change relative prices the same
// way a swap would, so the non-proportional ("taxable") part of each amount
// pays the swap fee. Proportional operations are fee-exempt.

// CalcBptOutGivenExactTokensIn returns the BPT minted for depositing
// amountsIn.
func CalcBptOutGivenExactTokensIn(balances, weights, amountsIn []*uint256.Int, totalSupply, swapFee *uint256.Int) (*uint256.Int, error) {
	if err := checkLengths(balances, weights, amountsIn); err != nil {
		return nil, err
	}
	if allZero(amountsIn) {
		return new(uint256.Int), nil
	}

	one := fixedpoint.One()
	balanceRatiosWithFee := make([]*uint256.Int, len(amountsIn))
	invariantRatioWithFees := new(uint256.Int)
	for i := range balances {
		grown, err := fixedpoint.Add(balances[i], amountsIn[i])
		if err != nil {
			return nil, err
		}
		if balanceRatiosWithFee[i], err = fixedpoint.DivDown(grown, balances[i]); err != nil {
			return nil, err
		}
		weighted, err := fixedpoint.MulDown(balanceRatiosWithFee[i], weights[i])
		if err != nil {
			return nil, err
		}
		if invariantRatioWithFees, err = fixedpoint.Add(invariantRatioWithFees, weighted); err != nil {
			return nil, err
		}
	}

	invariantRatio := fixedpoint.One()
	for i := range balances {
		amountInWithoutFee := amountsIn[i]
		if balanceRatiosWithFee[i].Gt(invariantRatioWithFees) {
			// Only the part above the proportional deposit is taxed.
			var nonTaxable *uint256.Int
			if invariantRatioWithFees.Gt(one) {
				var err error
				nonTaxable, err = fixedpoint.MulDown(balances[i], new(uint256.Int).Sub(invariantRatioWithFees, one))
				if err != nil {
					return nil, err
				}
			} else {
				nonTaxable = new(uint256.Int)
			}
			taxable, err := fixedpoint.Sub(amountsIn[i], nonTaxable)
			if err != nil {
				return nil, err
			}
			fee, err := fixedpoint.MulUp(taxable, swapFee)
			if err != nil {
				return nil, err
			}
			amountInWithoutFee = new(uint256.Int).Sub(amountsIn[i], fee)
		}

		grown, err := fixedpoint.Add(balances[i], amountInWithoutFee)
		if err != nil {
			return nil, err
		}
		balanceRatio, err := fixedpoint.DivDown(grown, balances[i])
		if err != nil {
			return nil, err
		}
		power, err := fixedpoint.PowDown(balanceRatio, weights[i])
		if err != nil {
			return nil, err
		}
		if invariantRatio, err = fixedpoint.MulDown(invariantRatio, power); err != nil {
			return nil, err
		}
	}

	if invariantRatio.Gt(maxInvariantRatio) {
		return nil, fmt.Errorf("%w: invariant would grow by more than %s", ErrExcessiveAmount, fixedpoint.Format(maxInvariantRatio))
	}
	if !invariantRatio.Gt(one) {
		return new(uint256.Int), nil
	}
	return fixedpoint.MulDown(totalSupply, invariantRatio.Sub(invariantRatio, one))
}

// CalcBptOutGivenExactTokenIn returns the BPT minted for depositing amountIn
// of a single token.
func CalcBptOutGivenExactTokenIn(balance, weight, amountIn, totalSupply, swapFee *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return new(uint256.Int), nil
	}
	one := fixedpoint.One()

	grown, err := fixedpoint.Add(balance, amountIn)
	if err != nil {
		return nil, err
	}
	balanceRatioWithFee, err := fixedpoint.DivDown(grown, balance)
	if err != nil {
		return nil, err
	}
	weighted, err := fixedpoint.MulDown(balanceRatioWithFee, weight)
	if err != nil {
		return nil, err
	}
	invariantRatioWithFees, err := fixedpoint.Add(weighted, fixedpoint.Complement(weight))
	if err != nil {
		return nil, err
	}

	amountInWithoutFee := amountIn
	if balanceRatioWithFee.Gt(invariantRatioWithFees) {
		nonTaxable := new(uint256.Int)
		if invariantRatioWithFees.Gt(one) {
			if nonTaxable, err = fixedpoint.MulDown(balance, new(uint256.Int).Sub(invariantRatioWithFees, one)); err != nil {
				return nil, err
			}
		}
		taxable, err := fixedpoint.Sub(amountIn, nonTaxable)
		if err != nil {
			return nil, err
		}
		fee, err := fixedpoint.MulUp(taxable, swapFee)
		if err != nil {
			return nil, err
		}
		amountInWithoutFee = new(uint256.Int).Sub(amountIn, fee)
	}

	if grown, err = fixedpoint.Add(balance, amountInWithoutFee); err != nil {
		return nil, err
	}
	balanceRatio, err := fixedpoint.DivDown(grown, balance)
	if err != nil {
		return nil, err
	}
	invariantRatio, err := fixedpoint.PowDown(balanceRatio, weight)
	if err != nil {
		return nil, err
	}
	if invariantRatio.Gt(maxInvariantRatio) {
		return nil, fmt.Errorf("%w: invariant would grow by more than %s", ErrExcessiveAmount, fixedpoint.Format(maxInvariantRatio))
	}
	if !invariantRatio.Gt(one) {
		return new(uint256.Int), nil
	}
	return fixedpoint.MulDown(totalSupply, invariantRatio.Sub(invariantRatio, one))
}

// CalcTokenInGivenExactBptOut returns the amount of a single token needed to
// mint exactly bptOut.
func CalcTokenInGivenExactBptOut(balance, weight, bptOut, totalSupply, swapFee *uint256.Int) (*uint256.Int, error) {
	if bptOut.IsZero() {
		return new(uint256.Int), nil
	}
	grownSupply, err := fixedpoint.Add(totalSupply, bptOut)
	if err != nil {
		return nil, err
	}
	invariantRatio, err := fixedpoint.DivUp(grownSupply, totalSupply)
	if err != nil {
		return nil, err
	}
	if invariantRatio.Gt(maxInvariantRatio) {
		return nil, fmt.Errorf("%w: invariant would grow by more than %s", ErrExcessiveAmount, fixedpoint.Format(maxInvariantRatio))
	}

	exponent, err := fixedpoint.DivUp(fixedpoint.One(), weight)
	if err != nil {
		return nil, err
	}
	balanceRatio, err := fixedpoint.PowUp(invariantRatio, exponent)
	if err != nil {
		return nil, err
	}
	growth, err := fixedpoint.Sub(balanceRatio, fixedpoint.One())
	if err != nil {
		return nil, err
	}
	amountInWithoutFee, err := fixedpoint.MulUp(balance, growth)
	if err != nil {
		return nil, err
	}

	// A proportional deposit would cover weight of the amount; the rest is
	// effectively swapped and pays the fee.
	taxable, err := fixedpoint.MulUp(amountInWithoutFee, fixedpoint.Complement(weight))
	if err != nil {
		return nil, err
	}
	nonTaxable := new(uint256.Int).Sub(amountInWithoutFee, taxable)
	taxablePlusFees, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFee))
	if err != nil {
		return nil, err
	}
	return fixedpoint.Add(nonTaxable, taxablePlusFees)
}

// CalcAllTokensInGivenExactBptOut returns the proportional deposit that mints
// exactly bptOut. No fee is charged.
func CalcAllTokensInGivenExactBptOut(balances []*uint256.Int, bptOut, totalSupply *uint256.Int) ([]*uint256.Int, error) {
	ratio, err := fixedpoint.DivUp(bptOut, totalSupply)
	if err != nil {
		return nil, err
	}
	amountsIn := make([]*uint256.Int, len(balances))
	for i, b := range balances {
		if amountsIn[i], err = fixedpoint.MulUp(b, ratio); err != nil {
			return nil, err
		}
	}
	return amountsIn, nil
}

// CalcBptInGivenExactTokensOut returns the BPT burned to withdraw exactly
// amountsOut.
func CalcBptInGivenExactTokensOut(balances, weights, amountsOut []*uint256.Int, totalSupply, swapFee *uint256.Int) (*uint256.Int, error) {
	if err := checkLengths(balances, weights, amountsOut); err != nil {
		return nil, err
	}
	if allZero(amountsOut) {
		return new(uint256.Int), nil
	}

	balanceRatiosWithoutFee := make([]*uint256.Int, len(amountsOut))
	invariantRatioWithoutFees := new(uint256.Int)
	for i := range balances {
		if !amountsOut[i].Lt(balances[i]) {
			return nil, fmt.Errorf("%w: token %d", ErrExcessiveOutput, i)
		}
		remaining := new(uint256.Int).Sub(balances[i], amountsOut[i])
		var err error
		if balanceRatiosWithoutFee[i], err = fixedpoint.DivUp(remaining, balances[i]); err != nil {
			return nil, err
		}
		weighted, err := fixedpoint.MulUp(balanceRatiosWithoutFee[i], weights[i])
		if err != nil {
			return nil, err
		}
		if invariantRatioWithoutFees, err = fixedpoint.Add(invariantRatioWithoutFees, weighted); err != nil {
			return nil, err
		}
	}

	invariantRatio := fixedpoint.One()
	for i := range balances {
		amountOutWithFee := amountsOut[i]
		if invariantRatioWithoutFees.Gt(balanceRatiosWithoutFee[i]) {
			// Only the part beyond the proportional withdrawal is taxed.
			nonTaxable, err := fixedpoint.MulDown(balances[i], fixedpoint.Complement(invariantRatioWithoutFees))
			if err != nil {
				return nil, err
			}
			taxable, err := fixedpoint.Sub(amountsOut[i], nonTaxable)
			if err != nil {
				return nil, err
			}
			taxablePlusFees, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFee))
			if err != nil {
				return nil, err
			}
			if amountOutWithFee, err = fixedpoint.Add(nonTaxable, taxablePlusFees); err != nil {
				return nil, err
			}
		}

		remaining, err := fixedpoint.Sub(balances[i], amountOutWithFee)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d after fees", ErrExcessiveOutput, i)
		}
		balanceRatio, err := fixedpoint.DivDown(remaining, balances[i])
		if err != nil {
			return nil, err
		}
		power, err := fixedpoint.PowDown(balanceRatio, weights[i])
		if err != nil {
			return nil, err
		}
		if invariantRatio, err = fixedpoint.MulDown(invariantRatio, power); err != nil {
			return nil, err
		}
	}

	if invariantRatio.Lt(minInvariantRatio) {
		return nil, fmt.Errorf("%w: invariant would shrink below %s", ErrExcessiveAmount, fixedpoint.Format(minInvariantRatio))
	}
	return fixedpoint.MulUp(totalSupply, fixedpoint.Complement(invariantRatio))
}

// CalcBptInGivenExactTokenOut returns the BPT burned to withdraw exactly
// amountOut of a single token.
func CalcBptInGivenExactTokenOut(balance, weight, amountOut, totalSupply, swapFee *uint256.Int) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return new(uint256.Int), nil
	}
	if !amountOut.Lt(balance) {
		return nil, ErrExcessiveOutput
	}

	balanceRatioWithoutFee, err := fixedpoint.DivUp(new(uint256.Int).Sub(balance, amountOut), balance)
	if err != nil {
		return nil, err
	}
	weighted, err := fixedpoint.MulUp(balanceRatioWithoutFee, weight)
	if err != nil {
		return nil, err
	}
	invariantRatioWithoutFees, err := fixedpoint.Add(weighted, fixedpoint.Complement(weight))
	if err != nil {
		return nil, err
	}

	amountOutWithFee := amountOut
	if invariantRatioWithoutFees.Gt(balanceRatioWithoutFee) {
		nonTaxable, err := fixedpoint.MulDown(balance, fixedpoint.Complement(invariantRatioWithoutFees))
		if err != nil {
			return nil, err
		}
		taxable, err := fixedpoint.Sub(amountOut, nonTaxable)
		if err != nil {
			return nil, err
		}
		taxablePlusFees, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFee))
		if err != nil {
			return nil, err
		}
		if amountOutWithFee, err = fixedpoint.Add(nonTaxable, taxablePlusFees); err != nil {
			return nil, err
		}
	}

	remaining, err := fixedpoint.Sub(balance, amountOutWithFee)
	if err != nil {
		return nil, fmt.Errorf("%w: after fees", ErrExcessiveOutput)
	}
	balanceRatio, err := fixedpoint.DivDown(remaining, balance)
	if err != nil {
		return nil, err
	}
	invariantRatio, err := fixedpoint.PowDown(balanceRatio, weight)
	if err != nil {
		return nil, err
	}
	if invariantRatio.Lt(minInvariantRatio) {
		return nil, fmt.Errorf("%w: invariant would shrink below %s", ErrExcessiveAmount, fixedpoint.Format(minInvariantRatio))
	}
	return fixedpoint.MulUp(totalSupply, fixedpoint.Complement(invariantRatio))
}

// CalcTokenOutGivenExactBptIn returns the amount of a single token paid out
// for burning exactly bptIn.
func CalcTokenOutGivenExactBptIn(balance, weight, bptIn, totalSupply, swapFee *uint256.Int) (*uint256.Int, error) {
	if bptIn.IsZero() {
		return new(uint256.Int), nil
	}
	remainingSupply, err := fixedpoint.Sub(totalSupply, bptIn)
	if err != nil {
		return nil, fmt.Errorf("%w: bpt in exceeds total supply", ErrExcessiveAmount)
	}
	invariantRatio, err := fixedpoint.DivUp(remainingSupply, totalSupply)
	if err != nil {
		return nil, err
	}
	if invariantRatio.Lt(minInvariantRatio) {
		return nil, fmt.Errorf("%w: invariant would shrink below %s", ErrExcessiveAmount, fixedpoint.Format(minInvariantRatio))
	}

	exponent, err := fixedpoint.DivDown(fixedpoint.One(), weight)
	if err != nil {
		return nil, err
	}
	balanceRatio, err := fixedpoint.PowUp(invariantRatio, exponent)
	if err != nil {
		return nil, err
	}
	amountOutWithoutFee, err := fixedpoint.MulDown(balance, fixedpoint.Complement(balanceRatio))
	if err != nil {
		return nil, err
	}

	taxable, err := fixedpoint.MulUp(amountOutWithoutFee, fixedpoint.Complement(weight))
	if err != nil {
		return nil, err
	}
	nonTaxable := new(uint256.Int).Sub(amountOutWithoutFee, taxable)
	taxableMinusFees, err := fixedpoint.MulDown(taxable, fixedpoint.Complement(swapFee))
	if err != nil {
		return nil, err
	}
	return fixedpoint.Add(nonTaxable, taxableMinusFees)
}

// CalcTokensOutGivenExactBptIn returns the proportional withdrawal paid out
// for burning exactly bptIn. No fee is charged.
func CalcTokensOutGivenExactBptIn(balances []*uint256.Int, bptIn, totalSupply *uint256.Int) ([]*uint256.Int, error) {
	if bptIn.Gt(totalSupply) {
		return nil, fmt.Errorf("%w: bpt in exceeds total supply", ErrExcessiveAmount)
	}
	ratio, err := fixedpoint.DivDown(bptIn, totalSupply)
	if err != nil {
		return nil, err
	}
	amountsOut := make([]*uint256.Int, len(balances))
	for i, b := range balances {
		if amountsOut[i], err = fixedpoint.MulDown(b, ratio); err != nil {
			return nil, err
		}
	}
	return amountsOut, nil
}

// CalcBptOutAddToken returns the BPT to mint when a token of the given
// normalized weight is added to the pool: the new token's share of the
// grown supply equals its weight.
func CalcBptOutAddToken(totalSupply, weight *uint256.Int) (*uint256.Int, error) {
	remaining, err := fixedpoint.Sub(fixedpoint.One(), weight)
	if err != nil || remaining.IsZero() {
		return nil, fmt.Errorf("%w: weight %s", ErrInvalidWeights, fixedpoint.Format(weight))
	}
	weightSumRatio, err := fixedpoint.DivDown(fixedpoint.One(), remaining)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDown(totalSupply, new(uint256.Int).Sub(weightSumRatio, fixedpoint.One()))
}

func checkLengths(balances, weights, amounts []*uint256.Int) error {
	if len(balances) != len(weights) || len(balances) != len(amounts) {
		return fmt.Errorf("%w: %d balances, %d weights, %d amounts", ErrLengthMismatch, len(balances), len(weights), len(amounts))
	}
	return nil
}
