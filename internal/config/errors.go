package config

import "errors"

// ErrMissingRPCEndpoint indicates that the required ETH_RPC_URL variable is
// not set in the environment.
var ErrMissingRPCEndpoint = errors.New("missing ETH_RPC_URL environment variable")

// ErrInvalidVaultAddress indicates that VAULT_ADDRESS is not a hex address.
var ErrInvalidVaultAddress = errors.New("VAULT_ADDRESS is not a valid address")
