package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/internal/eth/ethtest"
	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

var (
	vault  = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")
	pool   = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	token0 = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	token1 = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	other  = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

type memStore struct {
	mu    sync.Mutex
	items map[[2]common.Address]breaker.State
}

func newMemStore() *memStore {
	return &memStore{items: make(map[[2]common.Address]breaker.State)}
}

func (m *memStore) SaveBreaker(_ context.Context, pool, token common.Address, st breaker.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[[2]common.Address{pool, token}] = st
	return nil
}

func (m *memStore) LoadBreaker(_ context.Context, pool, token common.Address) (breaker.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[[2]common.Address{pool, token}]
	return st, ok, nil
}

func (m *memStore) ListBreakers(_ context.Context, pool common.Address) (map[common.Address]breaker.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[common.Address]breaker.State)
	for k, st := range m.items {
		if k[0] == pool {
			out[k[1]] = st
		}
	}
	return out, nil
}

func (m *memStore) DeleteBreaker(_ context.Context, pool, token common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, [2]common.Address{pool, token})
	return nil
}

func newTestService(t *testing.T, p *ethtest.Pool) (*PoolService, *ethtest.Node) {
	t.Helper()
	node := &ethtest.Node{
		BlockNumber: 123,
		Vault:       vault,
		Pools:       map[common.Address]*ethtest.Pool{pool: p},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPoolService(logger, node.Client(t), vault, newMemStore()), node
}

func raw(units int64, decimals int) *uint256.Int {
	return uint256.MustFromBig(ethtest.Amount(units, decimals))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	state, err := svc.Load(context.Background(), pool)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.Block != 123 {
		t.Fatalf("unexpected block %d", state.Block)
	}
	if len(state.Tokens) != 2 || state.Tokens[1] != token1 {
		t.Fatalf("unexpected tokens %v", state.Tokens)
	}
	// The 6-decimal balance is upscaled to 18 decimals.
	if !state.Pool.Balances[1].Eq(fixedpoint.MustParse("2000")) {
		t.Fatalf("unexpected upscaled balance %s", state.Pool.Balances[1].Dec())
	}
	if !state.Pool.Weights[0].Eq(fixedpoint.MustParse("0.8")) {
		t.Fatalf("unexpected weight %s", state.Pool.Weights[0].Dec())
	}
	if i, err := state.TokenIndex(token1); err != nil || i != 1 {
		t.Fatalf("TokenIndex = %d, %v", i, err)
	}
	if _, err := state.TokenIndex(other); !errors.Is(err, ErrTokenNotInPool) {
		t.Fatalf("expected ErrTokenNotInPool, got %v", err)
	}
}

func TestLoad_InvalidState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(p *ethtest.Pool)
		want   error
	}{
		{"zero supply", func(p *ethtest.Pool) { p.TotalSupply = big.NewInt(0) }, ErrInvalidSupply},
		{"empty balances", func(p *ethtest.Pool) { p.Balances = []*big.Int{big.NewInt(0), big.NewInt(0)} }, ErrEmptyBalances},
		{"length mismatch", func(p *ethtest.Pool) { p.Weights = p.Weights[:1] }, weighted.ErrLengthMismatch},
		{"bad weights", func(p *ethtest.Pool) { p.Weights = []*big.Int{ethtest.Amount(9, 17), ethtest.Amount(2, 17)} }, weighted.ErrInvalidWeights},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := ethtest.EightyTwenty(token0, token1)
			tc.mutate(p)
			svc, _ := newTestService(t, p)
			if _, err := svc.Load(context.Background(), pool); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_UnknownPool(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	if _, err := svc.Load(context.Background(), other); err == nil {
		t.Fatalf("expected error for an address without a pool")
	}
}
