package breaker

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

func fp(s string) *uint256.Int { return fixedpoint.MustParse(s) }

var (
	supply   = fp("100000")
	weights  = []*uint256.Int{fp("0.8"), fp("0.2")}
	balances = []*uint256.Int{fp("8000"), fp("10")}
)

// Breaker on token 0 tolerating its price falling to 0.8x or rising to 2x.
func configured(t *testing.T) State {
	t.Helper()
	s, err := Configure(supply, weights[0], balances[0], fp("0.8"), fp("2"))
	require.NoError(t, err)
	return s
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	s := configured(t)
	require.True(t, s.IsSet())
	require.Equal(t, fp("10"), s.BptPrice)
	require.Equal(t, "956352499790046551", s.LowerBoundRatio.Dec())
	require.Equal(t, "1148698354997023517", s.UpperBoundRatio.Dec())

	lower, upper, err := s.BptPriceBounds(weights[0])
	require.NoError(t, err)
	require.Equal(t, "9563524997900465510", lower.Dec())
	require.Equal(t, "11486983549970235170", upper.Dec())
}

func TestConfigureRejectsBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		lower, upper string
	}{
		{"lower too small", "0.09", "2"},
		{"lower above one", "1.01", "2"},
		{"upper below one", "0.5", "0.99"},
		{"upper too large", "0.5", "10.01"},
	}
	for _, tc := range cases {
		_, err := Configure(supply, weights[0], balances[0], fp(tc.lower), fp(tc.upper))
		require.ErrorIs(t, err, ErrInvalidBounds, tc.name)
	}

	// Zero disables a side; the edges of each range are accepted.
	for _, b := range [][2]string{{"0", "0"}, {"0.1", "10"}, {"1", "1"}, {"0", "3"}} {
		_, err := Configure(supply, weights[0], balances[0], fp(b[0]), fp(b[1]))
		require.NoError(t, err, b)
	}

	_, err := Configure(supply, weights[0], new(uint256.Int), fp("0.5"), fp("2"))
	require.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)
}

func TestUnsetNeverTrips(t *testing.T) {
	t.Parallel()

	var s State
	require.False(t, s.IsSet())
	require.NoError(t, s.CheckBothDirections(supply, weights[0], fp("1")))

	lower, upper, err := s.BptPriceBounds(weights[0])
	require.NoError(t, err)
	require.True(t, lower.IsZero())
	require.True(t, upper.IsZero())

	tripped, err := HasTripped(supply, weights[0], fp("1"), new(uint256.Int), true)
	require.NoError(t, err)
	require.False(t, tripped)
}

func TestPriceMovesTripBreaker(t *testing.T) {
	t.Parallel()

	s := configured(t)
	cases := []struct {
		ratio        string
		lower, upper bool
	}{
		{"0.5", true, false},
		{"0.799", true, false},
		// Exact edges: rounding pushes the upper edge over its bound while
		// the lower edge still holds.
		{"0.8", false, false},
		{"0.801", false, false},
		{"1", false, false},
		{"1.999", false, false},
		{"2", false, true},
		{"2.001", false, true},
		{"3", false, true},
	}
	for _, tc := range cases {
		post, err := weighted.PostSwapBalancesGivenPriceRatio(weights, balances, 0, fp(tc.ratio))
		require.NoError(t, err, tc.ratio)

		err = s.Check(supply, weights[0], post[0], Lower)
		if tc.lower {
			require.ErrorIs(t, err, ErrBreakerTripped, tc.ratio)
		} else {
			require.NoError(t, err, tc.ratio)
		}

		err = s.Check(supply, weights[0], post[0], Upper)
		if tc.upper {
			require.ErrorIs(t, err, ErrBreakerTripped, tc.ratio)
		} else {
			require.NoError(t, err, tc.ratio)
		}

		err = s.CheckBothDirections(supply, weights[0], post[0])
		if tc.lower || tc.upper {
			require.ErrorIs(t, err, ErrBreakerTripped, tc.ratio)
		} else {
			require.NoError(t, err, tc.ratio)
		}
	}
}

func TestDisabledSideIgnored(t *testing.T) {
	t.Parallel()

	s, err := Configure(supply, weights[0], balances[0], new(uint256.Int), fp("2"))
	require.NoError(t, err)

	post, err := weighted.PostSwapBalancesGivenPriceRatio(weights, balances, 0, fp("0.5"))
	require.NoError(t, err)
	require.NoError(t, s.CheckBothDirections(supply, weights[0], post[0]))
}

func TestBoundBalance(t *testing.T) {
	t.Parallel()

	s := configured(t)
	lowerBalance, err := s.BoundBalance(supply, weights[0], true)
	require.NoError(t, err)
	require.Equal(t, "8365116420730102178661", lowerBalance.Dec())

	upperBalance, err := s.BoundBalance(supply, weights[0], false)
	require.NoError(t, err)
	require.Equal(t, "6964404506369062774203", upperBalance.Dec())

	// Just inside the band on both sides.
	require.NoError(t, s.CheckBothDirections(supply, weights[0], lowerBalance))
	require.NoError(t, s.CheckBothDirections(supply, weights[0], upperBalance))

	beyond := new(uint256.Int).Add(lowerBalance, fp("1"))
	require.ErrorIs(t, s.Check(supply, weights[0], beyond, Lower), ErrBreakerTripped)
	below := new(uint256.Int).Sub(upperBalance, fp("1"))
	require.ErrorIs(t, s.Check(supply, weights[0], below, Upper), ErrBreakerTripped)

	s, err = Configure(supply, weights[0], balances[0], new(uint256.Int), fp("2"))
	require.NoError(t, err)
	disabled, err := s.BoundBalance(supply, weights[0], true)
	require.NoError(t, err)
	require.True(t, disabled.IsZero())
}

func TestWeightDriftRecomputesBounds(t *testing.T) {
	t.Parallel()

	s := configured(t)
	lowerRef, upperRef, err := s.BptPriceBounds(weights[0])
	require.NoError(t, err)

	// A lower weight makes the BPT price more sensitive to the token price,
	// widening the band.
	lower, upper, err := s.BptPriceBounds(fp("0.5"))
	require.NoError(t, err)
	require.True(t, lower.Lt(lowerRef))
	require.True(t, upper.Gt(upperRef))

	ratio, err := CalcAdjustedBound(fp("0.8"), fp("0.5"), true)
	require.NoError(t, err)
	want, err := CalcBptPriceBoundary(ratio, s.BptPrice, true)
	require.NoError(t, err)
	require.Equal(t, want, lower)
}

func TestHasTrippedRounding(t *testing.T) {
	t.Parallel()

	// price = 3 * 1 / 3 is exact; 10 * 1 / 3 is not.
	tripped, err := HasTripped(uint256.NewInt(10), fixedpoint.One(), uint256.NewInt(3), fp("3.333333333333333333"), false)
	require.NoError(t, err)
	require.True(t, tripped, "upper check rounds the price up")

	tripped, err = HasTripped(uint256.NewInt(10), fixedpoint.One(), uint256.NewInt(3), fp("3.333333333333333334"), true)
	require.NoError(t, err)
	require.True(t, tripped, "lower check rounds the price down")

	tripped, err = HasTripped(uint256.NewInt(3), fixedpoint.One(), uint256.NewInt(3), fixedpoint.One(), false)
	require.NoError(t, err)
	require.False(t, tripped, "bounds are inclusive")

	_, err = HasTripped(supply, weights[0], new(uint256.Int), fp("1"), true)
	require.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)
}

func TestDirectionString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "lower", Lower.String())
	require.Equal(t, "upper", Upper.String())
	require.Equal(t, "both", Both.String())
	require.Equal(t, "Direction(7)", Direction(7).String())
}
