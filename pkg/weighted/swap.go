package weighted

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
)

// CalcOutGivenIn returns the amount of the out token a fee-free swap of
// amountIn pays out:
//
//	balanceOut * (1 - (balanceIn / (balanceIn + amountIn)) ^ (weightIn / weightOut))
func CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return new(uint256.Int), nil
	}
	maxIn, err := fixedpoint.MulDown(balanceIn, maxInRatio)
	if err != nil {
		return nil, err
	}
	if amountIn.Gt(maxIn) {
		return nil, ErrExcessiveAmount
	}

	// The base rounds up and the power rounds up, so the complement and the
	// amount out both shrink.
	denominator, err := fixedpoint.Add(balanceIn, amountIn)
	if err != nil {
		return nil, err
	}
	base, err := fixedpoint.DivUp(balanceIn, denominator)
	if err != nil {
		return nil, err
	}
	exponent, err := fixedpoint.DivDown(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDown(balanceOut, fixedpoint.Complement(power))
}

// CalcInGivenOut returns the amount of the in token a fee-free swap needs to
// pay out exactly amountOut:
//
//	balanceIn * ((balanceOut / (balanceOut - amountOut)) ^ (weightOut / weightIn) - 1)
func CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut *uint256.Int) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return new(uint256.Int), nil
	}
	if !amountOut.Lt(balanceOut) {
		return nil, ErrExcessiveOutput
	}
	maxOut, err := fixedpoint.MulDown(balanceOut, maxOutRatio)
	if err != nil {
		return nil, err
	}
	if amountOut.Gt(maxOut) {
		return nil, ErrExcessiveAmount
	}

	remaining, err := fixedpoint.Sub(balanceOut, amountOut)
	if err != nil {
		return nil, err
	}
	base, err := fixedpoint.DivUp(balanceOut, remaining)
	if err != nil {
		return nil, err
	}
	exponent, err := fixedpoint.DivUp(weightOut, weightIn)
	if err != nil {
		return nil, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}
	ratio, err := fixedpoint.Sub(power, fixedpoint.One())
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulUp(balanceIn, ratio)
}

// SwapGivenIn charges the swap fee on amountIn and returns the amount out.
func SwapGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn, swapFee *uint256.Int) (*uint256.Int, error) {
	if err := checkFee(swapFee); err != nil {
		return nil, err
	}
	fee, err := fixedpoint.MulUp(amountIn, swapFee)
	if err != nil {
		return nil, err
	}
	amountInLessFee, err := fixedpoint.Sub(amountIn, fee)
	if err != nil {
		return nil, err
	}
	return CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountInLessFee)
}

// SwapGivenOut returns the amount in, fee included, needed to receive
// exactly amountOut.
func SwapGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut, swapFee *uint256.Int) (*uint256.Int, error) {
	if err := checkFee(swapFee); err != nil {
		return nil, err
	}
	amountIn, err := CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut)
	if err != nil {
		return nil, err
	}
	return fixedpoint.DivUp(amountIn, fixedpoint.Complement(swapFee))
}

func checkFee(swapFee *uint256.Int) error {
	if swapFee == nil || !swapFee.Lt(fixedpoint.One()) {
		return ErrInvalidFee
	}
	return nil
}
