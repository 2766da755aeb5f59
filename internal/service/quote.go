package service

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

// SwapKind says which side of a swap the given amount fixes.
type SwapKind int

const (
	GivenIn SwapKind = iota
	GivenOut
)

func (k SwapKind) String() string {
	switch k {
	case GivenIn:
		return "given_in"
	case GivenOut:
		return "given_out"
	default:
		return fmt.Sprintf("SwapKind(%d)", int(k))
	}
}

// ParseSwapKind accepts "given_in" and "given_out". The empty string means
// given_in.
func ParseSwapKind(s string) (SwapKind, error) {
	switch s {
	case "", "given_in":
		return GivenIn, nil
	case "given_out":
		return GivenOut, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSwapKind, s)
	}
}

// QuoteSwap returns, in raw token units, the amount out of a given-in swap or
// the amount in of a given-out swap. The quote is rejected if the post-swap
// balances trip a configured breaker.
func (s *PoolService) QuoteSwap(ctx context.Context, pool, tokenIn, tokenOut common.Address, amount *uint256.Int, kind SwapKind) (*uint256.Int, error) {
	s.logger.Debug("quoting swap", "pool", pool.Hex(), "token_in", tokenIn.Hex(), "token_out", tokenOut.Hex(), "amount", amount.Dec(), "kind", kind)

	if tokenIn == tokenOut {
		return nil, ErrSameToken
	}
	if kind != GivenIn && kind != GivenOut {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSwapKind, kind)
	}

	state, err := s.Load(ctx, pool)
	if err != nil {
		return nil, err
	}
	in, err := state.TokenIndex(tokenIn)
	if err != nil {
		return nil, err
	}
	out, err := state.TokenIndex(tokenOut)
	if err != nil {
		return nil, err
	}

	p := state.Pool
	var amountIn, amountOut, result *uint256.Int
	if kind == GivenIn {
		if amountIn, err = fixedpoint.Upscale(amount, state.ScalingFactors[in]); err != nil {
			return nil, err
		}
		if amountOut, err = weighted.SwapGivenIn(p.Balances[in], p.Weights[in], p.Balances[out], p.Weights[out], amountIn, p.SwapFee); err != nil {
			return nil, err
		}
		result, err = fixedpoint.DownscaleDown(amountOut, state.ScalingFactors[out])
	} else {
		if amountOut, err = fixedpoint.Upscale(amount, state.ScalingFactors[out]); err != nil {
			return nil, err
		}
		if amountIn, err = weighted.SwapGivenOut(p.Balances[in], p.Weights[in], p.Balances[out], p.Weights[out], amountOut, p.SwapFee); err != nil {
			return nil, err
		}
		result, err = fixedpoint.DownscaleUp(amountIn, state.ScalingFactors[in])
	}
	if err != nil {
		return nil, err
	}

	balances := copyBalances(p.Balances)
	if balances[in], err = fixedpoint.Add(balances[in], amountIn); err != nil {
		return nil, err
	}
	if balances[out], err = fixedpoint.Sub(balances[out], amountOut); err != nil {
		return nil, err
	}
	// More of token in lowers its BPT price; less of token out raises it.
	err = s.checkBreakers(ctx, state, balances, state.TotalSupply, func(i int) breaker.Direction {
		switch i {
		case in:
			return breaker.Lower
		case out:
			return breaker.Upper
		default:
			return 0
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("swap quoted", "pool", pool.Hex(), "kind", kind, "result", result.Dec())
	return result, nil
}

// QuoteJoin evaluates a join with amounts in raw token units and returns the
// BPT minted and the raw amounts deposited.
func (s *PoolService) QuoteJoin(ctx context.Context, pool common.Address, req weighted.JoinRequest) (weighted.Result, error) {
	s.logger.Debug("quoting join", "pool", pool.Hex(), "kind", req.Kind)

	state, err := s.Load(ctx, pool)
	if err != nil {
		return weighted.Result{}, err
	}
	if req.Amounts != nil {
		if req.Amounts, err = upscaleAll(req.Amounts, state.ScalingFactors); err != nil {
			return weighted.Result{}, err
		}
	}

	res, err := weighted.Join(state.Pool, state.TotalSupply, req)
	if err != nil {
		return weighted.Result{}, err
	}

	balances := copyBalances(state.Pool.Balances)
	for i := range balances {
		if balances[i], err = fixedpoint.Add(balances[i], res.Amounts[i]); err != nil {
			return weighted.Result{}, err
		}
	}
	supply, err := fixedpoint.Add(state.TotalSupply, res.Bpt)
	if err != nil {
		return weighted.Result{}, err
	}
	if err := s.checkBreakers(ctx, state, balances, supply, bothDirections); err != nil {
		return weighted.Result{}, err
	}

	amounts, err := downscaleAll(res.Amounts, state.ScalingFactors, true)
	if err != nil {
		return weighted.Result{}, err
	}
	s.logger.Debug("join quoted", "pool", pool.Hex(), "bpt", res.Bpt.Dec())
	return weighted.Result{Bpt: res.Bpt, Amounts: amounts}, nil
}

// QuoteExit evaluates an exit with amounts in raw token units and returns the
// BPT burned and the raw amounts withdrawn.
func (s *PoolService) QuoteExit(ctx context.Context, pool common.Address, req weighted.ExitRequest) (weighted.Result, error) {
	s.logger.Debug("quoting exit", "pool", pool.Hex(), "kind", req.Kind)

	state, err := s.Load(ctx, pool)
	if err != nil {
		return weighted.Result{}, err
	}
	if req.Amounts != nil {
		if req.Amounts, err = upscaleAll(req.Amounts, state.ScalingFactors); err != nil {
			return weighted.Result{}, err
		}
	}

	res, err := weighted.Exit(state.Pool, state.TotalSupply, req)
	if err != nil {
		return weighted.Result{}, err
	}

	balances := copyBalances(state.Pool.Balances)
	for i := range balances {
		if balances[i], err = fixedpoint.Sub(balances[i], res.Amounts[i]); err != nil {
			return weighted.Result{}, err
		}
	}
	supply, err := fixedpoint.Sub(state.TotalSupply, res.Bpt)
	if err != nil {
		return weighted.Result{}, err
	}
	if err := s.checkBreakers(ctx, state, balances, supply, bothDirections); err != nil {
		return weighted.Result{}, err
	}

	amounts, err := downscaleAll(res.Amounts, state.ScalingFactors, false)
	if err != nil {
		return weighted.Result{}, err
	}
	s.logger.Debug("exit quoted", "pool", pool.Hex(), "bpt", res.Bpt.Dec())
	return weighted.Result{Bpt: res.Bpt, Amounts: amounts}, nil
}

// Joins and exits move the supply together with the balances, so the
// direction of each token's BPT price move is not known in advance.
func bothDirections(int) breaker.Direction { return breaker.Both }

// checkBreakers evaluates every configured breaker of the pool against the
// post-operation balances and supply. dir returns 0 for tokens that need no
// check.
func (s *PoolService) checkBreakers(ctx context.Context, state *PoolState, balances []*uint256.Int, supply *uint256.Int, dir func(int) breaker.Direction) error {
	if s.breakers == nil {
		return nil
	}
	configured, err := s.breakers.ListBreakers(ctx, state.Address)
	if err != nil {
		return err
	}
	for i, token := range state.Tokens {
		st, ok := configured[token]
		if !ok {
			continue
		}
		d := dir(i)
		if d == 0 {
			continue
		}
		if err := st.Check(supply, state.Pool.Weights[i], balances[i], d); err != nil {
			s.logger.Debug("breaker tripped", "pool", state.Address.Hex(), "token", token.Hex(), "direction", d, "err", err)
			return fmt.Errorf("token %s: %w", token.Hex(), err)
		}
	}
	return nil
}

func copyBalances(balances []*uint256.Int) []*uint256.Int {
	out := make([]*uint256.Int, len(balances))
	for i, b := range balances {
		out[i] = new(uint256.Int).Set(b)
	}
	return out
}

func upscaleAll(amounts, scalingFactors []*uint256.Int) ([]*uint256.Int, error) {
	if len(amounts) != len(scalingFactors) {
		return nil, fmt.Errorf("%w: %d amounts for %d tokens", weighted.ErrLengthMismatch, len(amounts), len(scalingFactors))
	}
	out := make([]*uint256.Int, len(amounts))
	for i, a := range amounts {
		var err error
		if out[i], err = fixedpoint.Upscale(a, scalingFactors[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// downscaleAll rounds up amounts entering the pool and down amounts leaving it.
func downscaleAll(amounts, scalingFactors []*uint256.Int, roundUp bool) ([]*uint256.Int, error) {
	downscale := fixedpoint.DownscaleDown
	if roundUp {
		downscale = fixedpoint.DownscaleUp
	}
	out := make([]*uint256.Int, len(amounts))
	for i, a := range amounts {
		var err error
		if out[i], err = downscale(a, scalingFactors[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
