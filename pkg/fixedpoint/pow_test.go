package fixedpoint

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestPowIntExact(t *testing.T) {
	t.Parallel()

	down, err := PowDown(MustParse("1.5"), MustParse("3"))
	require.NoError(t, err)
	require.Equal(t, MustParse("3.375"), down)

	up, err := PowUp(MustParse("1.5"), MustParse("3"))
	require.NoError(t, err)
	require.Equal(t, MustParse("3.375"), up)

	id, err := PowDown(MustParse("123.456"), One())
	require.NoError(t, err)
	require.Equal(t, MustParse("123.456"), id)

	zero, err := PowUp(MustParse("123.456"), new(uint256.Int))
	require.NoError(t, err)
	require.Equal(t, One(), zero)
}

func TestPowIntMatchesRepeatedMul(t *testing.T) {
	t.Parallel()

	x := MustParse("1.000000000000000123")
	want := One()
	for n := uint64(1); n <= 9; n++ {
		var err error
		want, err = MulDown(want, x)
		require.NoError(t, err)

		got, err := PowInt(x, n, false)
		require.NoError(t, err)
		// Repeated squaring and sequential multiplication truncate at
		// different steps, so they agree to within n units.
		diff := new(uint256.Int)
		if got.Gt(want) {
			diff.Sub(got, want)
		} else {
			diff.Sub(want, got)
		}
		require.False(t, diff.GtUint64(n), "n=%d got=%s want=%s", n, got, want)
	}
}

func TestPowBracketsTrueValue(t *testing.T) {
	t.Parallel()

	// sqrt(2) = 1.414213562373095048801...
	sqrt2Floor := u(1414213562373095048)
	down, err := PowDown(MustParse("2"), MustParse("0.5"))
	require.NoError(t, err)
	up, err := PowUp(MustParse("2"), MustParse("0.5"))
	require.NoError(t, err)
	require.False(t, down.Gt(sqrt2Floor))
	require.True(t, up.Gt(sqrt2Floor))

	// Within the 1e-14 margin on either side.
	require.True(t, new(uint256.Int).Sub(up, down).Lt(u(1e5)))
}

func TestPowSquareAgreesWithMul(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"0.5", "1.7", "42.42", "1000000"} {
		x := MustParse(s)
		sq, err := MulDown(x, x)
		require.NoError(t, err)
		got, err := PowDown(x, MustParse("2"))
		require.NoError(t, err)
		require.Equal(t, sq, got, s)

		cube, err := MulDown(sq, x)
		require.NoError(t, err)
		got, err = PowDown(x, MustParse("3"))
		require.NoError(t, err)
		diff := new(uint256.Int)
		if got.Gt(cube) {
			diff.Sub(got, cube)
		} else {
			diff.Sub(cube, got)
		}
		require.False(t, diff.GtUint64(2), s)
	}
}

func TestPowDownNeverExceedsPowUp(t *testing.T) {
	t.Parallel()

	bases := []string{"0.01", "0.3", "0.999", "1.001", "2", "17.5", "1000"}
	exponents := []string{"0.01", "0.2", "0.5", "0.8", "1.25", "4.5"}
	for _, b := range bases {
		for _, e := range exponents {
			down, err := PowDown(MustParse(b), MustParse(e))
			require.NoError(t, err)
			up, err := PowUp(MustParse(b), MustParse(e))
			require.NoError(t, err)
			require.False(t, down.Gt(up), "%s^%s", b, e)
		}
	}
}

func BenchmarkPowDown(b *testing.B) {
	x := MustParse("1.3")
	y := MustParse("0.8")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = PowDown(x, y)
	}
}

func BenchmarkMulDown(b *testing.B) {
	x := MustParse("13451234.56789")
	y := MustParse("0.997")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MulDown(x, y)
	}
}
