package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Only the view functions the estimator reads are declared.

const weightedPoolABIJSON = `[
	{"type":"function","name":"getPoolId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"getNormalizedWeights","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"getSwapFeePercentage","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getScalingFactors","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getInvariant","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

const vaultABIJSON = `[
	{"type":"function","name":"getPoolTokens","stateMutability":"view",
	 "inputs":[{"name":"poolId","type":"bytes32"}],
	 "outputs":[{"name":"tokens","type":"address[]"},{"name":"balances","type":"uint256[]"},{"name":"lastChangeBlock","type":"uint256"}]}
]`

var (
	// WeightedPoolABI covers the Balancer V2 weighted pool getters.
	WeightedPoolABI = mustParseABI(weightedPoolABIJSON)
	// VaultABI covers the Balancer V2 vault getPoolTokens getter.
	VaultABI = mustParseABI(vaultABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
