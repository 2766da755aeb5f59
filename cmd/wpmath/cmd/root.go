// Package cmd implements the wpmath command line, which evaluates weighted
// pool math against a YAML pool file.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/nulln0ne/weighted-estimator/internal/poolfile"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
)

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the full command tree. Every call returns fresh flag
// state.
func NewRootCmd() *cobra.Command {
	var poolPath string

	root := &cobra.Command{
		Use:   "wpmath",
		Short: "Weighted pool math on a pool file",
		Long: `wpmath evaluates weighted pool math offline.

The pool is read from a YAML file (--pool) holding the swap fee, the BPT
supply and each token's balance and weight as decimals. All amounts on the
command line are decimals normalized to 18 decimals.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&poolPath, "pool", "p", "pool.yaml", "pool description file")

	load := func() (*poolfile.Description, error) {
		return poolfile.Load(poolPath)
	}

	root.AddCommand(
		newInvariantCmd(load),
		newSwapCmd(load),
		newJoinCmd(load),
		newExitCmd(load),
		newBreakerCmd(load),
		newPriceRatioCmd(load),
		newAddTokenCmd(load),
	)
	return root
}

type loadFunc func() (*poolfile.Description, error)

func parseDecimal(flag, s string) (*uint256.Int, error) {
	z, err := fixedpoint.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return z, nil
}

// parseAmounts reads a comma separated list of decimals, one per token.
// An empty list yields nil.
func parseAmounts(flag, s string) ([]*uint256.Int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]*uint256.Int, len(parts))
	for i, p := range parts {
		z, err := parseDecimal(flag, p)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}

func printAmounts(w io.Writer, symbols []string, amounts []*uint256.Int) {
	for i, a := range amounts {
		fmt.Fprintf(w, "  %-10s %s\n", symbols[i], fixedpoint.Format(a))
	}
}
