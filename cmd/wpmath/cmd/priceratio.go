package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

func newPriceRatioCmd(load loadFunc) *cobra.Command {
	var token, ratio string

	cmd := &cobra.Command{
		Use:   "price-ratio",
		Short: "Print the balances after arbitrage moves a token's price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			i, err := d.Index(token)
			if err != nil {
				return err
			}
			r, err := parseDecimal("ratio", ratio)
			if err != nil {
				return err
			}
			post, err := weighted.PostSwapBalancesGivenPriceRatio(d.Pool.Weights, d.Pool.Balances, i, r)
			if err != nil {
				return err
			}
			inv, err := weighted.Invariant(d.Pool.Weights, post)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "balances:")
			printAmounts(w, d.Symbols, post)
			fmt.Fprintf(w, "invariant: %s\n", fixedpoint.Format(inv))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "symbol of the token whose price moves")
	cmd.Flags().StringVar(&ratio, "ratio", "", "new price divided by the old price")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("ratio")
	return cmd
}
