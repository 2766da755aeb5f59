package weighted

import (
	"fmt"

	"github.com/holiman/uint256"
)

// JoinKind selects how a join is parameterized.
type JoinKind int

const (
	// ExactTokensInForBptOut deposits exact amounts of any tokens.
	ExactTokensInForBptOut JoinKind = iota + 1
	// TokenInForExactBptOut deposits one token to mint an exact BPT amount.
	TokenInForExactBptOut
	// AllTokensInForExactBptOut deposits every token proportionally.
	AllTokensInForExactBptOut
)

var joinKindNames = map[JoinKind]string{
	ExactTokensInForBptOut:    "exact_tokens_in_for_bpt_out",
	TokenInForExactBptOut:     "token_in_for_exact_bpt_out",
	AllTokensInForExactBptOut: "all_tokens_in_for_exact_bpt_out",
}

func (k JoinKind) String() string {
	if name, ok := joinKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("JoinKind(%d)", int(k))
}

// ParseJoinKind maps the snake_case name of a join kind back to its value.
func ParseJoinKind(s string) (JoinKind, error) {
	for k, name := range joinKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: join kind %q", ErrUnknownKind, s)
}

// ExitKind selects how an exit is parameterized.
type ExitKind int

const (
	// ExactBptInForOneTokenOut burns an exact BPT amount for a single token.
	ExactBptInForOneTokenOut ExitKind = iota + 1
	// ExactBptInForTokensOut burns an exact BPT amount for every token
	// proportionally.
	ExactBptInForTokensOut
	// BptInForExactTokensOut withdraws exact amounts of any tokens.
	BptInForExactTokensOut
)

var exitKindNames = map[ExitKind]string{
	ExactBptInForOneTokenOut: "exact_bpt_in_for_one_token_out",
	ExactBptInForTokensOut:   "exact_bpt_in_for_tokens_out",
	BptInForExactTokensOut:   "bpt_in_for_exact_tokens_out",
}

func (k ExitKind) String() string {
	if name, ok := exitKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ExitKind(%d)", int(k))
}

// ParseExitKind maps the snake_case name of an exit kind back to its value.
func ParseExitKind(s string) (ExitKind, error) {
	for k, name := range exitKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: exit kind %q", ErrUnknownKind, s)
}

// JoinRequest describes a join. Amounts is read by ExactTokensInForBptOut,
// Bpt by the other kinds, TokenIndex by TokenInForExactBptOut.
type JoinRequest struct {
	Kind       JoinKind
	Amounts    []*uint256.Int
	Bpt        *uint256.Int
	TokenIndex int
}

// ExitRequest describes an exit. Amounts is read by BptInForExactTokensOut,
// Bpt by the other kinds, TokenIndex by ExactBptInForOneTokenOut.
type ExitRequest struct {
	Kind       ExitKind
	Amounts    []*uint256.Int
	Bpt        *uint256.Int
	TokenIndex int
}

// Result is the outcome of a join or exit: the BPT minted or burned and the
// per-token amounts deposited or withdrawn, in token order.
type Result struct {
	Bpt     *uint256.Int
	Amounts []*uint256.Int
}

// Join evaluates a join against pool with the given BPT supply.
func Join(pool Pool, totalSupply *uint256.Int, req JoinRequest) (Result, error) {
	if err := pool.Validate(); err != nil {
		return Result{}, err
	}
	if totalSupply == nil || totalSupply.IsZero() {
		return Result{}, fmt.Errorf("%w: zero total supply", ErrInvalidPool)
	}

	bpt := orZero(req.Bpt)
	switch req.Kind {
	case ExactTokensInForBptOut:
		bptOut, err := CalcBptOutGivenExactTokensIn(pool.Balances, pool.Weights, req.Amounts, totalSupply, pool.SwapFee)
		if err != nil {
			return Result{}, err
		}
		return Result{Bpt: bptOut, Amounts: req.Amounts}, nil

	case TokenInForExactBptOut:
		if err := checkIndex(req.TokenIndex, len(pool.Balances)); err != nil {
			return Result{}, err
		}
		amountIn, err := CalcTokenInGivenExactBptOut(pool.Balances[req.TokenIndex], pool.Weights[req.TokenIndex], bpt, totalSupply, pool.SwapFee)
		if err != nil {
			return Result{}, err
		}
		amounts := zeros(len(pool.Balances))
		amounts[req.TokenIndex] = amountIn
		return Result{Bpt: bpt, Amounts: amounts}, nil

	case AllTokensInForExactBptOut:
		amounts, err := CalcAllTokensInGivenExactBptOut(pool.Balances, bpt, totalSupply)
		if err != nil {
			return Result{}, err
		}
		return Result{Bpt: bpt, Amounts: amounts}, nil

	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}
}

// Exit evaluates an exit against pool with the given BPT supply.
func Exit(pool Pool, totalSupply *uint256.Int, req ExitRequest) (Result, error) {
	if err := pool.Validate(); err != nil {
		return Result{}, err
	}
	if totalSupply == nil || totalSupply.IsZero() {
		return Result{}, fmt.Errorf("%w: zero total supply", ErrInvalidPool)
	}

	bpt := orZero(req.Bpt)
	switch req.Kind {
	case ExactBptInForOneTokenOut:
		if err := checkIndex(req.TokenIndex, len(pool.Balances)); err != nil {
			return Result{}, err
		}
		amountOut, err := CalcTokenOutGivenExactBptIn(pool.Balances[req.TokenIndex], pool.Weights[req.TokenIndex], bpt, totalSupply, pool.SwapFee)
		if err != nil {
			return Result{}, err
		}
		amounts := zeros(len(pool.Balances))
		amounts[req.TokenIndex] = amountOut
		return Result{Bpt: bpt, Amounts: amounts}, nil

	case ExactBptInForTokensOut:
		amounts, err := CalcTokensOutGivenExactBptIn(pool.Balances, bpt, totalSupply)
		if err != nil {
			return Result{}, err
		}
		return Result{Bpt: bpt, Amounts: amounts}, nil

	case BptInForExactTokensOut:
		bptIn, err := CalcBptInGivenExactTokensOut(pool.Balances, pool.Weights, req.Amounts, totalSupply, pool.SwapFee)
		if err != nil {
			return Result{}, err
		}
		return Result{Bpt: bptIn, Amounts: req.Amounts}, nil

	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}
}
