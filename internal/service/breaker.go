package service

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
)

// BreakerView is a stored breaker evaluated against the live pool. Prices
// and balances are 18-decimal; zero means the side is disabled.
type BreakerView struct {
	Pool  common.Address
	Token common.Address
	State breaker.State

	LowerBptPrice *uint256.Int
	UpperBptPrice *uint256.Int
	// LowerBoundBalance is the largest balance, UpperBoundBalance the
	// smallest, that keeps the BPT price inside the band at the current
	// supply.
	LowerBoundBalance *uint256.Int
	UpperBoundBalance *uint256.Int
	CurrentBalance    *uint256.Int
}

// ConfigureBreaker snapshots the live supply, weight and balance of token
// and stores a breaker with the given price-ratio bounds. An existing
// breaker for the token is replaced.
func (s *PoolService) ConfigureBreaker(ctx context.Context, pool, token common.Address, lower, upper *uint256.Int) (*BreakerView, error) {
	if s.breakers == nil {
		return nil, ErrNoBreakerStore
	}
	state, err := s.Load(ctx, pool)
	if err != nil {
		return nil, err
	}
	i, err := state.TokenIndex(token)
	if err != nil {
		return nil, err
	}

	st, err := breaker.Configure(state.TotalSupply, state.Pool.Weights[i], state.Pool.Balances[i], lower, upper)
	if err != nil {
		return nil, err
	}
	if err := s.breakers.SaveBreaker(ctx, pool, token, st); err != nil {
		return nil, err
	}

	s.logger.Info("breaker configured", "pool", pool.Hex(), "token", token.Hex(), "lower", lower.Dec(), "upper", upper.Dec(), "block", state.Block)
	return s.view(state, i, st)
}

// Breaker returns the stored breaker of token together with its bounds at
// the current pool state.
func (s *PoolService) Breaker(ctx context.Context, pool, token common.Address) (*BreakerView, error) {
	if s.breakers == nil {
		return nil, ErrNoBreakerStore
	}
	st, found, err := s.breakers.LoadBreaker(ctx, pool, token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrBreakerNotFound, token.Hex())
	}

	state, err := s.Load(ctx, pool)
	if err != nil {
		return nil, err
	}
	i, err := state.TokenIndex(token)
	if err != nil {
		return nil, err
	}
	return s.view(state, i, st)
}

// RemoveBreaker deletes the breaker of token. Quotes stop checking it
// immediately.
func (s *PoolService) RemoveBreaker(ctx context.Context, pool, token common.Address) error {
	if s.breakers == nil {
		return ErrNoBreakerStore
	}
	_, found, err := s.breakers.LoadBreaker(ctx, pool, token)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrBreakerNotFound, token.Hex())
	}
	if err := s.breakers.DeleteBreaker(ctx, pool, token); err != nil {
		return err
	}
	s.logger.Info("breaker removed", "pool", pool.Hex(), "token", token.Hex())
	return nil
}

func (s *PoolService) view(state *PoolState, i int, st breaker.State) (*BreakerView, error) {
	weight := state.Pool.Weights[i]
	lower, upper, err := st.BptPriceBounds(weight)
	if err != nil {
		return nil, err
	}
	lowerBalance, err := st.BoundBalance(state.TotalSupply, weight, true)
	if err != nil {
		return nil, err
	}
	upperBalance, err := st.BoundBalance(state.TotalSupply, weight, false)
	if err != nil {
		return nil, err
	}
	return &BreakerView{
		Pool:              state.Address,
		Token:             state.Tokens[i],
		State:             st,
		LowerBptPrice:     lower,
		UpperBptPrice:     upper,
		LowerBoundBalance: lowerBalance,
		UpperBoundBalance: upperBalance,
		CurrentBalance:    state.Pool.Balances[i],
	}, nil
}
