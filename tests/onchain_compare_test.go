package tests

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/weighted-estimator/internal/config"
	"github.com/nulln0ne/weighted-estimator/internal/eth"
	"github.com/nulln0ne/weighted-estimator/internal/service"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

// TestInvariant_Onchain compares the locally computed invariant with the
// pool's getInvariant() via eth_call at the same block. Skips unless both
// ETH_RPC_URL and WEIGHTED_POOL_ADDRESS are set. The pool must expose
// getScalingFactors(). VAULT_ADDRESS overrides the default vault.
func TestInvariant_Onchain(t *testing.T) {
	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		t.Skip("ETH_RPC_URL not set; skipping on-chain comparison test")
	}
	poolAddr := os.Getenv("WEIGHTED_POOL_ADDRESS")
	if poolAddr == "" {
		t.Skip("WEIGHTED_POOL_ADDRESS not set; skipping on-chain comparison test")
	}
	vault := os.Getenv("VAULT_ADDRESS")
	if vault == "" {
		vault = config.DefaultVaultAddress
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := eth.Dial(ctx, rpcURL)
	if err != nil {
		t.Fatalf("dial eth rpc: %v", err)
	}
	defer client.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewPoolService(logger, client, common.HexToAddress(vault), nil)

	pool := common.HexToAddress(poolAddr)
	state, err := svc.Load(ctx, pool)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}

	local, err := weighted.Invariant(state.Pool.Weights, state.Pool.Balances)
	if err != nil {
		t.Fatalf("local invariant: %v", err)
	}

	values, err := eth.Call(ctx, client, eth.WeightedPoolABI, pool, new(big.Int).SetUint64(state.Block), "getInvariant")
	if err != nil {
		t.Fatalf("eth_call getInvariant: %v", err)
	}
	onchain, ok := values[0].(*big.Int)
	if !ok {
		t.Fatalf("unexpected output type: %T", values[0])
	}

	// Both sides use the same approximations, so anything beyond a few units
	// per 1e14 is a real divergence.
	diff := new(big.Int).Sub(local.ToBig(), onchain)
	diff.Abs(diff)
	limit := new(big.Int).Quo(onchain, big.NewInt(1e14))
	limit.Add(limit, big.NewInt(1))
	if diff.Cmp(limit) > 0 {
		t.Fatalf("mismatch at block %d: local=%s onchain=%s", state.Block, local.Dec(), onchain)
	}
	t.Logf("block %d: invariant %s (diff %s)", state.Block, onchain, diff)
}
