package cmd

import (
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/nulln0ne/weighted-estimator/internal/poolfile"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

// liquidityFlags are shared by join and exit.
type liquidityFlags struct {
	kind    string
	amounts string
	bpt     string
	token   string
}

func (f *liquidityFlags) register(cmd *cobra.Command, defaultKind string) {
	cmd.Flags().StringVar(&f.kind, "kind", defaultKind, "operation kind")
	cmd.Flags().StringVar(&f.amounts, "amounts", "", "comma separated token amounts, in pool order")
	cmd.Flags().StringVar(&f.bpt, "bpt", "", "exact BPT amount")
	cmd.Flags().StringVar(&f.token, "token", "", "token symbol for single-token kinds")
}

func (f *liquidityFlags) parse(d *poolfile.Description) (amounts []*uint256.Int, bpt *uint256.Int, index int, err error) {
	if amounts, err = parseAmounts("amounts", f.amounts); err != nil {
		return nil, nil, 0, err
	}
	if f.bpt != "" {
		if bpt, err = parseDecimal("bpt", f.bpt); err != nil {
			return nil, nil, 0, err
		}
	}
	if f.token != "" {
		if index, err = d.Index(f.token); err != nil {
			return nil, nil, 0, err
		}
	}
	return amounts, bpt, index, nil
}

func newJoinCmd(load loadFunc) *cobra.Command {
	var f liquidityFlags

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Quote a join",
		Long: `Quote a join. Kinds:

  exact_tokens_in_for_bpt_out      --amounts
  token_in_for_exact_bpt_out       --bpt --token
  all_tokens_in_for_exact_bpt_out  --bpt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			kind, err := weighted.ParseJoinKind(f.kind)
			if err != nil {
				return err
			}
			amounts, bpt, index, err := f.parse(d)
			if err != nil {
				return err
			}
			res, err := weighted.Join(d.Pool, d.TotalSupply, weighted.JoinRequest{
				Kind:       kind,
				Amounts:    amounts,
				Bpt:        bpt,
				TokenIndex: index,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), "bpt out", d.Symbols, res)
			return nil
		},
	}
	f.register(cmd, weighted.ExactTokensInForBptOut.String())
	return cmd
}

func newExitCmd(load loadFunc) *cobra.Command {
	var f liquidityFlags

	cmd := &cobra.Command{
		Use:   "exit",
		Short: "Quote an exit",
		Long: `Quote an exit. Kinds:

  exact_bpt_in_for_one_token_out  --bpt --token
  exact_bpt_in_for_tokens_out     --bpt
  bpt_in_for_exact_tokens_out     --amounts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			kind, err := weighted.ParseExitKind(f.kind)
			if err != nil {
				return err
			}
			amounts, bpt, index, err := f.parse(d)
			if err != nil {
				return err
			}
			res, err := weighted.Exit(d.Pool, d.TotalSupply, weighted.ExitRequest{
				Kind:       kind,
				Amounts:    amounts,
				Bpt:        bpt,
				TokenIndex: index,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), "bpt in", d.Symbols, res)
			return nil
		},
	}
	f.register(cmd, weighted.ExactBptInForTokensOut.String())
	return cmd
}

func printResult(w io.Writer, bptLabel string, symbols []string, res weighted.Result) {
	fmt.Fprintf(w, "%s: %s\n", bptLabel, fixedpoint.Format(res.Bpt))
	fmt.Fprintln(w, "amounts:")
	printAmounts(w, symbols, res.Amounts)
}

func newAddTokenCmd(load loadFunc) *cobra.Command {
	var weight string

	cmd := &cobra.Command{
		Use:   "add-token",
		Short: "Print the BPT minted when a token of the given weight is added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := load()
			if err != nil {
				return err
			}
			w, err := parseDecimal("weight", weight)
			if err != nil {
				return err
			}
			bpt, err := weighted.CalcBptOutAddToken(d.TotalSupply, w)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fixedpoint.Format(bpt))
			return nil
		},
	}
	cmd.Flags().StringVar(&weight, "weight", "", "normalized weight of the new token")
	_ = cmd.MarkFlagRequired("weight")
	return cmd
}
