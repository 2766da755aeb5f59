// Package ethtest serves a fake Balancer V2 vault and weighted pools over an
// in-process JSON-RPC server.
package ethtest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/nulln0ne/weighted-estimator/internal/eth"
)

// Pool is the on-chain state the fake reports for one weighted pool.
type Pool struct {
	ID             [32]byte
	Tokens         []common.Address
	Balances       []*big.Int
	Weights        []*big.Int
	ScalingFactors []*big.Int
	SwapFee        *big.Int
	TotalSupply    *big.Int
	Invariant      *big.Int
}

// CallArgs is the subset of eth_call arguments the fake reads. Newer clients
// send calldata as "input", older ones as "data".
type CallArgs struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

// Node implements the eth namespace methods the estimator uses.
type Node struct {
	mu          sync.Mutex
	ChainID     uint64
	BlockNumber uint64
	Vault       common.Address
	Pools       map[common.Address]*Pool
}

// Service is registered under the "eth" namespace. It is separate from Node
// so the exported fields of Node are not mistaken for RPC methods.
type Service struct{ node *Node }

func (s *Service) ChainId(ctx context.Context) (*hexutil.Big, error) {
	s.node.mu.Lock()
	defer s.node.mu.Unlock()
	id := s.node.ChainID
	if id == 0 {
		id = 1
	}
	return (*hexutil.Big)(new(big.Int).SetUint64(id)), nil
}

func (s *Service) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	s.node.mu.Lock()
	defer s.node.mu.Unlock()
	return hexutil.Uint64(s.node.BlockNumber), nil
}

func (s *Service) Call(ctx context.Context, args CallArgs, _ gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	s.node.mu.Lock()
	defer s.node.mu.Unlock()

	input := args.Input
	if len(input) == 0 {
		input = args.Data
	}
	if args.To == nil || len(input) < 4 {
		return nil, errors.New("execution reverted")
	}
	if *args.To == s.node.Vault {
		return s.node.vaultCall(input)
	}
	p, ok := s.node.Pools[*args.To]
	if !ok {
		// Calls to accounts without code return no data.
		return hexutil.Bytes{}, nil
	}
	return p.call(input)
}

func (n *Node) vaultCall(input []byte) (hexutil.Bytes, error) {
	method, err := eth.VaultABI.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, err
	}
	id := args[0].([32]byte)
	for _, p := range n.Pools {
		if p.ID == id {
			return method.Outputs.Pack(p.Tokens, p.Balances, big.NewInt(0))
		}
	}
	return nil, errors.New("execution reverted: BAL#500")
}

func (p *Pool) call(input []byte) (hexutil.Bytes, error) {
	method, err := eth.WeightedPoolABI.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}
	var out any
	switch method.Name {
	case "getPoolId":
		out = p.ID
	case "getNormalizedWeights":
		out = p.Weights
	case "getSwapFeePercentage":
		out = p.SwapFee
	case "getScalingFactors":
		out = p.ScalingFactors
	case "totalSupply":
		out = p.TotalSupply
	case "getInvariant":
		out = p.Invariant
	default:
		return nil, fmt.Errorf("execution reverted: %s", method.Name)
	}
	return method.Outputs.Pack(out)
}

// Update runs fn with the node locked, for tests that change pool state
// between calls.
func (n *Node) Update(fn func(n *Node)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn(n)
}

// Server returns an RPC server for n. It also serves HTTP, for tests that
// dial a URL.
func (n *Node) Server(t testing.TB) *gethrpc.Server {
	t.Helper()
	srv := gethrpc.NewServer()
	if err := srv.RegisterName("eth", &Service{node: n}); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

// Client serves n in process and returns a client connected to it.
func (n *Node) Client(t testing.TB) *ethclient.Client {
	t.Helper()
	c := gethrpc.DialInProc(n.Server(t))
	t.Cleanup(c.Close)
	return ethclient.NewClient(c)
}

// Amount returns units * 10^decimals.
func Amount(units int64, decimals int) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, big.NewInt(units))
}

// ScalingFactor returns the 18-decimal factor for a token with decimals.
func ScalingFactor(decimals int) *big.Int {
	return Amount(1, 36-decimals)
}

// EightyTwenty returns an 80/20 pool of an 18-decimal token (100 units) and a
// 6-decimal token (2000 units) with 1000 BPT outstanding and no swap fee.
func EightyTwenty(token0, token1 common.Address) *Pool {
	return &Pool{
		ID:             common.HexToHash("0x01"),
		Tokens:         []common.Address{token0, token1},
		Balances:       []*big.Int{Amount(100, 18), Amount(2000, 6)},
		Weights:        []*big.Int{Amount(8, 17), Amount(2, 17)},
		ScalingFactors: []*big.Int{ScalingFactor(18), ScalingFactor(6)},
		SwapFee:        big.NewInt(0),
		TotalSupply:    Amount(1000, 18),
		Invariant:      big.NewInt(0),
	}
}
