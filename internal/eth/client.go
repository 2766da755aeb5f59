// Package eth connects to an Ethereum JSON-RPC endpoint and reads Balancer
// contracts through eth_call.
package eth

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

const dialTimeout = 15 * time.Second

// Dial connects to url and checks that the endpoint answers eth_chainId, so a
// wrong URL fails at startup rather than on the first quote.
func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	if _, err := client.ChainID(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	return client, nil
}
