package cmd

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

func newBreakerCmd(load loadFunc) *cobra.Command {
	var token, lower, upper, ratio string

	cmd := &cobra.Command{
		Use:   "breaker",
		Short: "Show circuit breaker bounds for a token",
		Long: `Configure a breaker for --token against the pool file and print its
BPT price bounds and the balances at which it trips.

With --ratio the token's external price is moved by that factor, the pool
is arbitraged to the new price and the breaker is checked against the
resulting balance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			i, err := d.Index(token)
			if err != nil {
				return err
			}
			lo, err := optionalDecimal("lower", lower)
			if err != nil {
				return err
			}
			up, err := optionalDecimal("upper", upper)
			if err != nil {
				return err
			}

			weight, balance := d.Pool.Weights[i], d.Pool.Balances[i]
			st, err := breaker.Configure(d.TotalSupply, weight, balance, lo, up)
			if err != nil {
				return err
			}
			lowerPrice, upperPrice, err := st.BptPriceBounds(weight)
			if err != nil {
				return err
			}
			lowerBalance, err := st.BoundBalance(d.TotalSupply, weight, true)
			if err != nil {
				return err
			}
			upperBalance, err := st.BoundBalance(d.TotalSupply, weight, false)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "bpt price:       %s\n", fixedpoint.Format(st.BptPrice))
			fmt.Fprintf(w, "lower bpt price: %s\n", fixedpoint.Format(lowerPrice))
			fmt.Fprintf(w, "upper bpt price: %s\n", fixedpoint.Format(upperPrice))
			fmt.Fprintf(w, "lower balance:   %s\n", fixedpoint.Format(lowerBalance))
			fmt.Fprintf(w, "upper balance:   %s\n", fixedpoint.Format(upperBalance))

			if ratio == "" {
				return nil
			}
			r, err := parseDecimal("ratio", ratio)
			if err != nil {
				return err
			}
			post, err := weighted.PostSwapBalancesGivenPriceRatio(d.Pool.Weights, d.Pool.Balances, i, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "balance at ratio %s: %s\n", fixedpoint.Format(r), fixedpoint.Format(post[i]))
			err = st.CheckBothDirections(d.TotalSupply, weight, post[i])
			switch {
			case errors.Is(err, breaker.ErrBreakerTripped):
				fmt.Fprintf(w, "tripped: %v\n", err)
			case err != nil:
				return err
			default:
				fmt.Fprintln(w, "within bounds")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token symbol")
	cmd.Flags().StringVar(&lower, "lower", "", "lower price ratio bound in [0.1, 1], empty to disable")
	cmd.Flags().StringVar(&upper, "upper", "", "upper price ratio bound in [1, 10], empty to disable")
	cmd.Flags().StringVar(&ratio, "ratio", "", "simulate an external price move by this factor")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func optionalDecimal(flag, s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	return parseDecimal(flag, s)
}
