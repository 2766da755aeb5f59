package config

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "http://localhost:8545")
	t.Setenv("ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("VAULT_ADDRESS", "")
	t.Setenv("BREAKER_DB", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":1337" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
	if cfg.VaultAddress != common.HexToAddress(DefaultVaultAddress) {
		t.Fatalf("unexpected vault %s", cfg.VaultAddress.Hex())
	}
	if cfg.BreakerDB != "breakers.db" {
		t.Fatalf("unexpected breaker db %q", cfg.BreakerDB)
	}
	if cfg.LogFormat != "" {
		t.Fatalf("unexpected log format %q", cfg.LogFormat)
	}
}

func TestFromEnv_MissingRPC(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "")

	if _, err := FromEnv(); !errors.Is(err, ErrMissingRPCEndpoint) {
		t.Fatalf("expected ErrMissingRPCEndpoint, got %v", err)
	}
}

func TestFromEnv_InvalidVault(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "http://localhost:8545")
	t.Setenv("VAULT_ADDRESS", "vault")

	if _, err := FromEnv(); !errors.Is(err, ErrInvalidVaultAddress) {
		t.Fatalf("expected ErrInvalidVaultAddress, got %v", err)
	}
}
