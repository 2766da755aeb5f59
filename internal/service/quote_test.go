package service

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"

	"github.com/nulln0ne/weighted-estimator/internal/eth/ethtest"
)

func TestQuoteSwap_GivenIn(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	out, err := svc.QuoteSwap(context.Background(), pool, token1, token0, raw(100, 6), GivenIn)
	if err != nil {
		t.Fatalf("QuoteSwap: %v", err)
	}
	if out.Dec() != "1212345257691601500" {
		t.Fatalf("unexpected amount out %s", out.Dec())
	}
}

func TestQuoteSwap_GivenOut(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	in, err := svc.QuoteSwap(context.Background(), pool, token0, token1, raw(10, 6), GivenOut)
	if err != nil {
		t.Fatalf("QuoteSwap: %v", err)
	}
	if in.Dec() != "125392095821081600" {
		t.Fatalf("unexpected amount in %s", in.Dec())
	}
}

func TestQuoteSwap_Errors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	ctx := context.Background()

	if _, err := svc.QuoteSwap(ctx, pool, token0, token0, raw(1, 18), GivenIn); !errors.Is(err, ErrSameToken) {
		t.Fatalf("expected ErrSameToken, got %v", err)
	}
	if _, err := svc.QuoteSwap(ctx, pool, token0, other, raw(1, 18), GivenIn); !errors.Is(err, ErrTokenNotInPool) {
		t.Fatalf("expected ErrTokenNotInPool, got %v", err)
	}
	if _, err := svc.QuoteSwap(ctx, pool, token0, token1, raw(31, 18), GivenIn); !errors.Is(err, weighted.ErrExcessiveAmount) {
		t.Fatalf("expected ErrExcessiveAmount, got %v", err)
	}
	if _, err := svc.QuoteSwap(ctx, pool, token0, token1, raw(1, 18), SwapKind(5)); !errors.Is(err, ErrUnknownSwapKind) {
		t.Fatalf("expected ErrUnknownSwapKind, got %v", err)
	}
}

func TestQuoteSwap_Breaker(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	ctx := context.Background()

	if _, err := svc.ConfigureBreaker(ctx, pool, token0, fixedpoint.MustParse("0.9"), fixedpoint.MustParse("1.1")); err != nil {
		t.Fatalf("ConfigureBreaker: %v", err)
	}

	if _, err := svc.QuoteSwap(ctx, pool, token1, token0, raw(1, 6), GivenIn); err != nil {
		t.Fatalf("small swap should pass: %v", err)
	}
	// Draining token 0 pushes its price well beyond 1.1x.
	_, err := svc.QuoteSwap(ctx, pool, token1, token0, raw(600, 6), GivenIn)
	if !errors.Is(err, breaker.ErrBreakerTripped) {
		t.Fatalf("expected ErrBreakerTripped, got %v", err)
	}
}

func TestQuoteJoinExit_Proportional(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	ctx := context.Background()

	// Proportional operations leave prices untouched, so a tight breaker
	// does not trip.
	if _, err := svc.ConfigureBreaker(ctx, pool, token0, fixedpoint.MustParse("0.99"), fixedpoint.MustParse("1.01")); err != nil {
		t.Fatalf("ConfigureBreaker: %v", err)
	}

	want := []*uint256.Int{raw(1, 18), raw(20, 6)}

	join, err := svc.QuoteJoin(ctx, pool, weighted.JoinRequest{Kind: weighted.AllTokensInForExactBptOut, Bpt: fixedpoint.MustParse("10")})
	if err != nil {
		t.Fatalf("QuoteJoin: %v", err)
	}
	for i := range want {
		if !join.Amounts[i].Eq(want[i]) {
			t.Fatalf("join amount %d: got %s want %s", i, join.Amounts[i].Dec(), want[i].Dec())
		}
	}

	exit, err := svc.QuoteExit(ctx, pool, weighted.ExitRequest{Kind: weighted.ExactBptInForTokensOut, Bpt: fixedpoint.MustParse("10")})
	if err != nil {
		t.Fatalf("QuoteExit: %v", err)
	}
	for i := range want {
		if !exit.Amounts[i].Eq(want[i]) {
			t.Fatalf("exit amount %d: got %s want %s", i, exit.Amounts[i].Dec(), want[i].Dec())
		}
	}
}

func TestQuoteJoin_SingleTokenTripsBreaker(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	ctx := context.Background()

	if _, err := svc.ConfigureBreaker(ctx, pool, token1, fixedpoint.MustParse("0.9"), fixedpoint.MustParse("1.1")); err != nil {
		t.Fatalf("ConfigureBreaker: %v", err)
	}

	// Doubling token 1 alone halves its price.
	_, err := svc.QuoteJoin(ctx, pool, weighted.JoinRequest{
		Kind:    weighted.ExactTokensInForBptOut,
		Amounts: []*uint256.Int{new(uint256.Int), raw(2000, 6)},
	})
	if !errors.Is(err, breaker.ErrBreakerTripped) {
		t.Fatalf("expected ErrBreakerTripped, got %v", err)
	}

	res, err := svc.QuoteJoin(ctx, pool, weighted.JoinRequest{
		Kind:    weighted.ExactTokensInForBptOut,
		Amounts: []*uint256.Int{new(uint256.Int), raw(1, 6)},
	})
	if err != nil {
		t.Fatalf("small join should pass: %v", err)
	}
	if res.Bpt.IsZero() {
		t.Fatalf("expected BPT out")
	}
}

func TestQuoteExit_Errors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, ethtest.EightyTwenty(token0, token1))
	_, err := svc.QuoteExit(context.Background(), pool, weighted.ExitRequest{
		Kind:    weighted.BptInForExactTokensOut,
		Amounts: []*uint256.Int{raw(1, 18)},
	})
	if !errors.Is(err, weighted.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}
