// Package store persists configured circuit breakers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
)

// SQLite stores one breaker per (pool, token). Fixed-point values are kept
// as base-10 TEXT so no precision is lost.
type SQLite struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS breakers (
		pool TEXT NOT NULL,
		token TEXT NOT NULL,
		bpt_price TEXT NOT NULL,
		reference_weight TEXT NOT NULL,
		lower_bound TEXT NOT NULL,
		upper_bound TEXT NOT NULL,
		lower_bound_ratio TEXT NOT NULL,
		upper_bound_ratio TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (pool, token)
	);
	`)
	return err
}

// SaveBreaker inserts or replaces the breaker of token in pool.
func (s *SQLite) SaveBreaker(ctx context.Context, pool, token common.Address, st breaker.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO breakers (pool, token, bpt_price, reference_weight, lower_bound, upper_bound, lower_bound_ratio, upper_bound_ratio, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (pool, token) DO UPDATE SET
			bpt_price = excluded.bpt_price,
			reference_weight = excluded.reference_weight,
			lower_bound = excluded.lower_bound,
			upper_bound = excluded.upper_bound,
			lower_bound_ratio = excluded.lower_bound_ratio,
			upper_bound_ratio = excluded.upper_bound_ratio,
			updated_at = excluded.updated_at
	`, pool.Hex(), token.Hex(),
		dec(st.BptPrice), dec(st.ReferenceWeight),
		dec(st.LowerBound), dec(st.UpperBound),
		dec(st.LowerBoundRatio), dec(st.UpperBoundRatio),
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save breaker: %w", err)
	}
	return nil
}

// LoadBreaker returns the breaker of token in pool. The boolean is false when
// none is stored.
func (s *SQLite) LoadBreaker(ctx context.Context, pool, token common.Address) (breaker.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT bpt_price, reference_weight, lower_bound, upper_bound, lower_bound_ratio, upper_bound_ratio
		FROM breakers WHERE pool = ? AND token = ?
	`, pool.Hex(), token.Hex())

	st, err := scanState(row)
	if err == sql.ErrNoRows {
		return breaker.State{}, false, nil
	}
	if err != nil {
		return breaker.State{}, false, fmt.Errorf("load breaker: %w", err)
	}
	return st, true, nil
}

// ListBreakers returns every breaker configured for pool keyed by token.
func (s *SQLite) ListBreakers(ctx context.Context, pool common.Address) (map[common.Address]breaker.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT token, bpt_price, reference_weight, lower_bound, upper_bound, lower_bound_ratio, upper_bound_ratio
		FROM breakers WHERE pool = ?
	`, pool.Hex())
	if err != nil {
		return nil, fmt.Errorf("list breakers: %w", err)
	}
	defer rows.Close()

	out := make(map[common.Address]breaker.State)
	for rows.Next() {
		var token string
		st := newState()
		if err := rows.Scan(&token, st.BptPrice, st.ReferenceWeight, st.LowerBound, st.UpperBound, st.LowerBoundRatio, st.UpperBoundRatio); err != nil {
			return nil, fmt.Errorf("scan breaker: %w", err)
		}
		out[common.HexToAddress(token)] = st
	}
	return out, rows.Err()
}

// DeleteBreaker removes the breaker of token in pool, if any.
func (s *SQLite) DeleteBreaker(ctx context.Context, pool, token common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM breakers WHERE pool = ? AND token = ?`, pool.Hex(), token.Hex()); err != nil {
		return fmt.Errorf("delete breaker: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func scanState(row *sql.Row) (breaker.State, error) {
	st := newState()
	err := row.Scan(st.BptPrice, st.ReferenceWeight, st.LowerBound, st.UpperBound, st.LowerBoundRatio, st.UpperBoundRatio)
	return st, err
}

func newState() breaker.State {
	return breaker.State{
		BptPrice:        new(uint256.Int),
		ReferenceWeight: new(uint256.Int),
		LowerBound:      new(uint256.Int),
		UpperBound:      new(uint256.Int),
		LowerBoundRatio: new(uint256.Int),
		UpperBoundRatio: new(uint256.Int),
	}
}

func dec(x *uint256.Int) string {
	if x == nil {
		return "0"
	}
	return x.Dec()
}
