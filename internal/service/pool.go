package service

import (
	"context"
	"fmt"
	"math/big"

	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/internal/eth"
	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

// BreakerStore persists breaker configurations per pool and token.
type BreakerStore interface {
	SaveBreaker(ctx context.Context, pool, token common.Address, st breaker.State) error
	LoadBreaker(ctx context.Context, pool, token common.Address) (breaker.State, bool, error)
	ListBreakers(ctx context.Context, pool common.Address) (map[common.Address]breaker.State, error)
	DeleteBreaker(ctx context.Context, pool, token common.Address) error
}

// PoolService reads Balancer V2 weighted pools through the vault and runs
// the pool math on the result.
type PoolService struct {
	BaseService
	ethereumClient *ethclient.Client
	vault          common.Address
	breakers       BreakerStore
}

// NewPoolService constructs a PoolService. breakers may be nil, in which
// case quotes skip breaker checks and breaker configuration fails.
func NewPoolService(logger *slog.Logger, ec *ethclient.Client, vault common.Address, breakers BreakerStore) *PoolService {
	return &PoolService{
		BaseService:    BaseService{logger: logger},
		ethereumClient: ec,
		vault:          vault,
		breakers:       breakers,
	}
}

// PoolState is a weighted pool as seen at one block. Balances in Pool are
// upscaled to 18 decimals with ScalingFactors.
type PoolState struct {
	Address        common.Address
	ID             [32]byte
	Block          uint64
	Tokens         []common.Address
	ScalingFactors []*uint256.Int
	Pool           weighted.Pool
	TotalSupply    *uint256.Int
}

// TokenIndex returns the position of token in the pool.
func (p *PoolState) TokenIndex(token common.Address) (int, error) {
	for i, t := range p.Tokens {
		if t == token {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrTokenNotInPool, token.Hex())
}

// Load reads the pool's tokens, balances, weights, fee, scaling factors and
// total supply at the latest block.
func (s *PoolService) Load(ctx context.Context, pool common.Address) (*PoolState, error) {
	bn, err := s.ethereumClient.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	block := new(big.Int).SetUint64(bn)

	poolID, err := callOne[[32]byte](ctx, s, pool, block, "getPoolId")
	if err != nil {
		return nil, err
	}
	values, err := eth.Call(ctx, s.ethereumClient, eth.VaultABI, s.vault, block, "getPoolTokens", poolID)
	if err != nil {
		return nil, err
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("getPoolTokens: unexpected %d outputs", len(values))
	}
	tokens, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("getPoolTokens: unexpected tokens type %T", values[0])
	}
	rawBalances, ok := values[1].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("getPoolTokens: unexpected balances type %T", values[1])
	}

	weights, err := callOne[[]*big.Int](ctx, s, pool, block, "getNormalizedWeights")
	if err != nil {
		return nil, err
	}
	scalingFactors, err := callOne[[]*big.Int](ctx, s, pool, block, "getScalingFactors")
	if err != nil {
		return nil, err
	}
	swapFee, err := callOne[*big.Int](ctx, s, pool, block, "getSwapFeePercentage")
	if err != nil {
		return nil, err
	}
	totalSupply, err := callOne[*big.Int](ctx, s, pool, block, "totalSupply")
	if err != nil {
		return nil, err
	}

	n := len(tokens)
	if len(rawBalances) != n || len(weights) != n || len(scalingFactors) != n {
		return nil, fmt.Errorf("%w: %d tokens, %d balances, %d weights, %d scaling factors",
			weighted.ErrLengthMismatch, n, len(rawBalances), len(weights), len(scalingFactors))
	}

	state := &PoolState{
		Address:        pool,
		ID:             poolID,
		Block:          bn,
		Tokens:         tokens,
		ScalingFactors: make([]*uint256.Int, n),
		Pool: weighted.Pool{
			Balances: make([]*uint256.Int, n),
			Weights:  make([]*uint256.Int, n),
		},
	}
	if state.Pool.SwapFee, err = toU256(swapFee); err != nil {
		return nil, err
	}
	if state.TotalSupply, err = toU256(totalSupply); err != nil {
		return nil, err
	}
	if state.TotalSupply.IsZero() {
		return nil, ErrInvalidSupply
	}

	empty := true
	for i := 0; i < n; i++ {
		if state.ScalingFactors[i], err = toU256(scalingFactors[i]); err != nil {
			return nil, err
		}
		if state.Pool.Weights[i], err = toU256(weights[i]); err != nil {
			return nil, err
		}
		raw, err := toU256(rawBalances[i])
		if err != nil {
			return nil, err
		}
		if state.Pool.Balances[i], err = fixedpoint.Upscale(raw, state.ScalingFactors[i]); err != nil {
			return nil, err
		}
		if !raw.IsZero() {
			empty = false
		}
	}
	if empty {
		return nil, ErrEmptyBalances
	}
	if err := state.Pool.Validate(); err != nil {
		return nil, err
	}

	s.logger.Debug("pool loaded", "pool", pool.Hex(), "block", bn, "tokens", n)
	return state, nil
}

func callOne[T any](ctx context.Context, s *PoolService, pool common.Address, block *big.Int, method string) (T, error) {
	var zero T
	values, err := eth.Call(ctx, s.ethereumClient, eth.WeightedPoolABI, pool, block, method)
	if err != nil {
		return zero, err
	}
	if len(values) != 1 {
		return zero, fmt.Errorf("%s: unexpected %d outputs", method, len(values))
	}
	v, ok := values[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected output type %T", method, values[0])
	}
	return v, nil
}

func toU256(v *big.Int) (*uint256.Int, error) {
	z, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fixedpoint.ErrOverflow
	}
	return z, nil
}
