package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

func newInvariantCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "invariant",
		Short: "Print the pool invariant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			inv, err := weighted.Invariant(d.Pool.Weights, d.Pool.Balances)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fixedpoint.Format(inv))
			return nil
		},
	}
}
