package eth_test

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/weighted-estimator/internal/eth"
	"github.com/nulln0ne/weighted-estimator/internal/eth/ethtest"
)

var (
	vault  = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")
	pool   = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	token0 = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	token1 = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func newNode() *ethtest.Node {
	return &ethtest.Node{
		ChainID:     5,
		BlockNumber: 7,
		Vault:       vault,
		Pools:       map[common.Address]*ethtest.Pool{pool: ethtest.EightyTwenty(token0, token1)},
	}
}

func TestDial(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newNode().Server(t))
	defer ts.Close()

	client, err := eth.Dial(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	id, err := client.ChainID(context.Background())
	if err != nil {
		t.Fatalf("ChainID: %v", err)
	}
	if id.Uint64() != 5 {
		t.Fatalf("unexpected chain id %s", id)
	}
}

func TestDial_Unreachable(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newNode().Server(t))
	url := ts.URL
	ts.Close()

	if _, err := eth.Dial(context.Background(), url); err == nil {
		t.Fatalf("expected an error dialing a closed endpoint")
	}
}

func TestCall(t *testing.T) {
	t.Parallel()

	client := newNode().Client(t)
	ctx := context.Background()
	block := big.NewInt(7)

	values, err := eth.Call(ctx, client, eth.WeightedPoolABI, pool, block, "getPoolId")
	if err != nil {
		t.Fatalf("getPoolId: %v", err)
	}
	id, ok := values[0].([32]byte)
	if !ok || common.Hash(id) != common.HexToHash("0x01") {
		t.Fatalf("unexpected pool id %v", values[0])
	}

	values, err = eth.Call(ctx, client, eth.VaultABI, vault, block, "getPoolTokens", id)
	if err != nil {
		t.Fatalf("getPoolTokens: %v", err)
	}
	tokens, ok := values[0].([]common.Address)
	if !ok || len(tokens) != 2 || tokens[0] != token0 || tokens[1] != token1 {
		t.Fatalf("unexpected tokens %v", values[0])
	}
	balances, ok := values[1].([]*big.Int)
	if !ok || balances[1].Cmp(ethtest.Amount(2000, 6)) != 0 {
		t.Fatalf("unexpected balances %v", values[1])
	}

	values, err = eth.Call(ctx, client, eth.WeightedPoolABI, pool, block, "getNormalizedWeights")
	if err != nil {
		t.Fatalf("getNormalizedWeights: %v", err)
	}
	weights, ok := values[0].([]*big.Int)
	if !ok || weights[0].Cmp(ethtest.Amount(8, 17)) != 0 {
		t.Fatalf("unexpected weights %v", values[0])
	}
}

func TestCall_Errors(t *testing.T) {
	t.Parallel()

	client := newNode().Client(t)
	ctx := context.Background()

	if _, err := eth.Call(ctx, client, eth.WeightedPoolABI, pool, nil, "getAmplificationParameter"); err == nil {
		t.Fatalf("expected a pack error for an unknown method")
	}
	other := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	if _, err := eth.Call(ctx, client, eth.WeightedPoolABI, other, nil, "totalSupply"); err == nil {
		t.Fatalf("expected an error calling a contract the node does not know")
	}
}
