// Package poolfile reads weighted pool descriptions from YAML for offline
// evaluation. Amounts are human decimals already normalized to 18 decimals:
//
//	swap_fee: "0.003"
//	total_supply: "1000"
//	tokens:
//	  - symbol: WETH
//	    balance: "100"
//	    weight: "0.8"
//	  - symbol: USDC
//	    balance: "2000"
//	    weight: "0.2"
package poolfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

var (
	ErrUnknownToken   = errors.New("unknown token")
	ErrDuplicateToken = errors.New("duplicate token symbol")
)

// TokenYAML is one token entry of a pool file.
type TokenYAML struct {
	Symbol  string `yaml:"symbol"`
	Balance string `yaml:"balance"`
	Weight  string `yaml:"weight"`
}

// PoolYAML is the on-disk layout of a pool file.
type PoolYAML struct {
	SwapFee     string      `yaml:"swap_fee"`
	TotalSupply string      `yaml:"total_supply"`
	Tokens      []TokenYAML `yaml:"tokens"`
}

// Description is a parsed and validated pool file.
type Description struct {
	Symbols     []string
	Pool        weighted.Pool
	TotalSupply *uint256.Int
}

// Load reads and validates the pool file at path.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool file: %w", err)
	}
	d, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a pool description. Unknown keys are rejected.
func Parse(r io.Reader) (*Description, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw PoolYAML
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode pool file: %w", err)
	}
	return raw.Description()
}

// Description converts the raw decimals into a validated pool.
func (p PoolYAML) Description() (*Description, error) {
	d := &Description{
		Symbols: make([]string, len(p.Tokens)),
		Pool: weighted.Pool{
			Balances: make([]*uint256.Int, len(p.Tokens)),
			Weights:  make([]*uint256.Int, len(p.Tokens)),
		},
	}

	var err error
	if d.Pool.SwapFee, err = parseField("swap_fee", p.SwapFee, true); err != nil {
		return nil, err
	}
	if d.TotalSupply, err = parseField("total_supply", p.TotalSupply, false); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(p.Tokens))
	for i, t := range p.Tokens {
		symbol := strings.TrimSpace(t.Symbol)
		if symbol == "" {
			symbol = fmt.Sprintf("token%d", i)
		}
		key := strings.ToUpper(symbol)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, symbol)
		}
		seen[key] = true
		d.Symbols[i] = symbol

		if d.Pool.Balances[i], err = parseField(symbol+".balance", t.Balance, false); err != nil {
			return nil, err
		}
		if d.Pool.Weights[i], err = parseField(symbol+".weight", t.Weight, false); err != nil {
			return nil, err
		}
	}

	if err := d.Pool.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Index returns the position of the token with the given symbol, compared
// case-insensitively.
func (d *Description) Index(symbol string) (int, error) {
	for i, s := range d.Symbols {
		if strings.EqualFold(s, symbol) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
}

func parseField(name, s string, allowEmpty bool) (*uint256.Int, error) {
	if s == "" {
		if allowEmpty {
			return new(uint256.Int), nil
		}
		return nil, fmt.Errorf("%s: %w: missing", name, fixedpoint.ErrInvalidDecimal)
	}
	z, err := fixedpoint.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return z, nil
}
