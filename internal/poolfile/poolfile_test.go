package poolfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

const eightyTwenty = `
swap_fee: "0.003"
total_supply: "1000"
tokens:
  - symbol: WETH
    balance: "100"
    weight: "0.8"
  - symbol: USDC
    balance: "2000"
    weight: "0.2"
`

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(eightyTwenty), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"WETH", "USDC"}, d.Symbols)
	require.True(t, d.Pool.SwapFee.Eq(fixedpoint.MustParse("0.003")))
	require.True(t, d.TotalSupply.Eq(fixedpoint.MustParse("1000")))
	require.True(t, d.Pool.Balances[1].Eq(fixedpoint.MustParse("2000")))
	require.True(t, d.Pool.Weights[0].Eq(fixedpoint.MustParse("0.8")))

	i, err := d.Index("usdc")
	require.NoError(t, err)
	require.Equal(t, 1, i)

	_, err = d.Index("DAI")
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown key",
			yaml: eightyTwenty + "amplification: 100\n",
		},
		{
			name: "bad weight sum",
			yaml: strings.Replace(eightyTwenty, `weight: "0.2"`, `weight: "0.3"`, 1),
			want: weighted.ErrInvalidWeights,
		},
		{
			name: "too precise",
			yaml: strings.Replace(eightyTwenty, `balance: "100"`, `balance: "0.0000000000000000001"`, 1),
			want: fixedpoint.ErrInvalidDecimal,
		},
		{
			name: "missing supply",
			yaml: strings.Replace(eightyTwenty, `total_supply: "1000"`, ``, 1),
			want: fixedpoint.ErrInvalidDecimal,
		},
		{
			name: "duplicate symbol",
			yaml: strings.Replace(eightyTwenty, "USDC", "weth", 1),
			want: ErrDuplicateToken,
		},
		{
			name: "fee too high",
			yaml: strings.Replace(eightyTwenty, `"0.003"`, `"0.5"`, 1),
			want: weighted.ErrInvalidFee,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tc.yaml))
			require.Error(t, err)
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParse_DefaultSymbols(t *testing.T) {
	t.Parallel()

	d, err := Parse(strings.NewReader(`
total_supply: "10"
tokens:
  - {balance: "1", weight: "0.5"}
  - {balance: "1", weight: "0.5"}
`))
	require.NoError(t, err)
	require.Equal(t, []string{"token0", "token1"}, d.Symbols)
	require.True(t, d.Pool.SwapFee.IsZero())
}
