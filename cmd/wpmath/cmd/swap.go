package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

func newSwapCmd(load loadFunc) *cobra.Command {
	var (
		tokenIn, tokenOut, amount string
		givenOut                  bool
	)

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Quote a swap between two tokens",
		Long: `Quote a swap between two tokens of the pool.

By default --amount is the exact amount sent in and the amount out is
printed. With --given-out it is the exact amount taken out and the amount
that must be sent in is printed. The pool's swap fee is applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			in, err := d.Index(tokenIn)
			if err != nil {
				return err
			}
			out, err := d.Index(tokenOut)
			if err != nil {
				return err
			}
			if in == out {
				return errors.New("--in and --out must differ")
			}
			a, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}

			p := d.Pool
			swap := weighted.SwapGivenIn
			if givenOut {
				swap = weighted.SwapGivenOut
			}
			result, err := swap(p.Balances[in], p.Weights[in], p.Balances[out], p.Weights[out], a, p.SwapFee)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fixedpoint.Format(result))
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenIn, "in", "", "symbol of the token sent in")
	cmd.Flags().StringVar(&tokenOut, "out", "", "symbol of the token taken out")
	cmd.Flags().StringVar(&amount, "amount", "", "exact amount in, or out with --given-out")
	cmd.Flags().BoolVar(&givenOut, "given-out", false, "treat --amount as the exact amount out")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
