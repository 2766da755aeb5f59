package config

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultVaultAddress is the Balancer V2 vault on mainnet and most L2s.
const DefaultVaultAddress = "0xBA12222222228d8Ba445958a75a0704d566BF2C8"

type Config struct {
	Addr         string
	RPCEndpoint  string
	LogLevel     string
	LogFormat    string
	VaultAddress common.Address
	BreakerDB    string
}

func FromEnv() (*Config, error) {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":1337"
	}

	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		return nil, ErrMissingRPCEndpoint
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	vault := os.Getenv("VAULT_ADDRESS")
	if vault == "" {
		vault = DefaultVaultAddress
	}
	if !common.IsHexAddress(vault) {
		return nil, ErrInvalidVaultAddress
	}

	breakerDB := os.Getenv("BREAKER_DB")
	if breakerDB == "" {
		breakerDB = "breakers.db"
	}

	cfg := &Config{
		Addr:         addr,
		RPCEndpoint:  rpcURL,
		LogLevel:     logLevel,
		LogFormat:    os.Getenv("LOG_FORMAT"),
		VaultAddress: common.HexToAddress(vault),
		BreakerDB:    breakerDB,
	}

	return cfg, nil
}
