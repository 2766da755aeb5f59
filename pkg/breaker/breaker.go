// Package breaker implements circuit breakers for weighted pools.
//
// A breaker is configured per token as a tolerated range of that token's
// price ratio relative to a reference snapshot. Because a token's BPT price
// (supply * weight / balance) moves as price^(1 - weight), the price-ratio
// bounds are converted into BPT price bounds before every check. The
// conversion is redone whenever the token weight has drifted from the
// reference weight.
package breaker

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
)

var (
	minBound = fixedpoint.MustParse("0.1")
	maxBound = fixedpoint.MustParse("10")
)

// Direction selects which bounds a check evaluates.
type Direction int

const (
	Lower Direction = iota + 1
	Upper
	// Both is used when the direction of the balance change is not known in
	// advance, such as joins and exits that move the total supply.
	Both
)

func (d Direction) String() string {
	switch d {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// State is the breaker configuration of a single token. A zero BptPrice
// means no breaker is set; a zero bound disables that side.
type State struct {
	// BptPrice is the reference BPT price, supply * weight / balance.
	BptPrice        *uint256.Int
	ReferenceWeight *uint256.Int
	LowerBound      *uint256.Int
	UpperBound      *uint256.Int
	// LowerBoundRatio and UpperBoundRatio are the bounds converted to BPT
	// price ratios at ReferenceWeight.
	LowerBoundRatio *uint256.Int
	UpperBoundRatio *uint256.Int
}

// Configure captures the reference snapshot and validates the bounds. The
// lower bound must be zero or lie in [0.1, 1]; the upper bound zero or in
// [1, 10].
func Configure(referenceSupply, referenceWeight, referenceBalance, lowerBound, upperBound *uint256.Int) (State, error) {
	one := fixedpoint.One()
	if !lowerBound.IsZero() && (lowerBound.Lt(minBound) || lowerBound.Gt(one)) {
		return State{}, fmt.Errorf("%w: lower bound %s", ErrInvalidBounds, fixedpoint.Format(lowerBound))
	}
	if !upperBound.IsZero() && (upperBound.Lt(one) || upperBound.Gt(maxBound)) {
		return State{}, fmt.Errorf("%w: upper bound %s", ErrInvalidBounds, fixedpoint.Format(upperBound))
	}
	if referenceWeight.IsZero() || !referenceWeight.Lt(one) {
		return State{}, fmt.Errorf("%w: reference weight %s", ErrInvalidBounds, fixedpoint.Format(referenceWeight))
	}

	bptPrice, err := fixedpoint.MulDivDown(referenceSupply, referenceWeight, referenceBalance)
	if err != nil {
		return State{}, err
	}
	lowerRatio, err := CalcAdjustedBound(lowerBound, referenceWeight, true)
	if err != nil {
		return State{}, err
	}
	upperRatio, err := CalcAdjustedBound(upperBound, referenceWeight, false)
	if err != nil {
		return State{}, err
	}

	return State{
		BptPrice:        bptPrice,
		ReferenceWeight: new(uint256.Int).Set(referenceWeight),
		LowerBound:      new(uint256.Int).Set(lowerBound),
		UpperBound:      new(uint256.Int).Set(upperBound),
		LowerBoundRatio: lowerRatio,
		UpperBoundRatio: upperRatio,
	}, nil
}

// IsSet reports whether the state holds a configured breaker.
func (s State) IsSet() bool {
	return s.BptPrice != nil && !s.BptPrice.IsZero()
}

// BptPriceBounds returns the lower and upper BPT price bounds at the given
// weight. Zero means the bound is not set.
func (s State) BptPriceBounds(currentWeight *uint256.Int) (lower, upper *uint256.Int, err error) {
	if !s.IsSet() {
		return new(uint256.Int), new(uint256.Int), nil
	}

	lowerRatio, upperRatio := s.LowerBoundRatio, s.UpperBoundRatio
	if !currentWeight.Eq(s.ReferenceWeight) || lowerRatio == nil || upperRatio == nil {
		if lowerRatio, err = CalcAdjustedBound(s.LowerBound, currentWeight, true); err != nil {
			return nil, nil, err
		}
		if upperRatio, err = CalcAdjustedBound(s.UpperBound, currentWeight, false); err != nil {
			return nil, nil, err
		}
	}

	if lower, err = CalcBptPriceBoundary(lowerRatio, s.BptPrice, true); err != nil {
		return nil, nil, err
	}
	if upper, err = CalcBptPriceBoundary(upperRatio, s.BptPrice, false); err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}

// BoundBalance returns the token balance at which the given bound trips for
// the supplied total supply and weight. A lower BPT price bound caps the
// balance from above, an upper one from below. Zero means the bound is not
// set.
func (s State) BoundBalance(supply, currentWeight *uint256.Int, isLowerBound bool) (*uint256.Int, error) {
	lower, upper, err := s.BptPriceBounds(currentWeight)
	if err != nil {
		return nil, err
	}
	bound := upper
	if isLowerBound {
		bound = lower
	}
	if bound.IsZero() {
		return new(uint256.Int), nil
	}
	if isLowerBound {
		return fixedpoint.MulDivDown(supply, currentWeight, bound)
	}
	return fixedpoint.MulDivUp(supply, currentWeight, bound)
}

// Check evaluates the breaker against a post-operation state in the given
// direction and returns an error wrapping ErrBreakerTripped if a bound is
// crossed.
func (s State) Check(supply, weight, balance *uint256.Int, dir Direction) error {
	if !s.IsSet() {
		return nil
	}
	lower, upper, err := s.BptPriceBounds(weight)
	if err != nil {
		return err
	}

	if dir == Lower || dir == Both {
		tripped, err := HasTripped(supply, weight, balance, lower, true)
		if err != nil {
			return err
		}
		if tripped {
			return fmt.Errorf("%w: bpt price below %s", ErrBreakerTripped, fixedpoint.Format(lower))
		}
	}
	if dir == Upper || dir == Both {
		tripped, err := HasTripped(supply, weight, balance, upper, false)
		if err != nil {
			return err
		}
		if tripped {
			return fmt.Errorf("%w: bpt price above %s", ErrBreakerTripped, fixedpoint.Format(upper))
		}
	}
	return nil
}

// CheckBothDirections checks the lower and the upper bound unconditionally.
func (s State) CheckBothDirections(supply, weight, balance *uint256.Int) error {
	return s.Check(supply, weight, balance, Both)
}

// HasTripped compares the BPT price implied by supply, weight and balance
// against boundBptPrice. A zero bound never trips. The price rounds down for
// lower bounds and up for upper bounds, so the check errs on the side of
// tripping.
func HasTripped(supply, weight, balance, boundBptPrice *uint256.Int, isLowerBound bool) (bool, error) {
	if boundBptPrice.IsZero() {
		return false, nil
	}
	if isLowerBound {
		price, err := fixedpoint.MulDivDown(supply, weight, balance)
		if err != nil {
			return false, err
		}
		return price.Lt(boundBptPrice), nil
	}
	price, err := fixedpoint.MulDivUp(supply, weight, balance)
	if err != nil {
		return false, err
	}
	return price.Gt(boundBptPrice), nil
}

// CalcAdjustedBound converts a token price-ratio bound into a BPT price
// ratio: bound^(1 - weight). The lower ratio rounds up and the upper ratio
// down, narrowing the band.
func CalcAdjustedBound(bound, weight *uint256.Int, isLowerBound bool) (*uint256.Int, error) {
	if bound.IsZero() {
		return new(uint256.Int), nil
	}
	if isLowerBound {
		return fixedpoint.PowUp(bound, fixedpoint.Complement(weight))
	}
	return fixedpoint.PowDown(bound, fixedpoint.Complement(weight))
}

// CalcBptPriceBoundary scales the reference BPT price by an adjusted bound
// ratio, rounding up for the lower bound and down for the upper bound.
func CalcBptPriceBoundary(boundRatio, bptPrice *uint256.Int, isLowerBound bool) (*uint256.Int, error) {
	if isLowerBound {
		return fixedpoint.MulUp(bptPrice, boundRatio)
	}
	return fixedpoint.MulDown(bptPrice, boundRatio)
}
