package handler

import (
	"errors"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/internal/service"
	"github.com/nulln0ne/weighted-estimator/pkg/breaker"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
	"github.com/nulln0ne/weighted-estimator/pkg/logexp"
	"github.com/nulln0ne/weighted-estimator/pkg/weighted"
)

type PoolHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewPoolHandler(logger *slog.Logger, svc *service.PoolService) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

// Register mounts every pool route on r.
func (h *PoolHandler) Register(r fiber.Router) {
	r.Get("/pools/:pool/swap", h.Swap())
	r.Post("/pools/:pool/join", h.Join())
	r.Post("/pools/:pool/exit", h.Exit())
	r.Put("/pools/:pool/breakers/:token", h.ConfigureBreaker())
	r.Get("/pools/:pool/breakers/:token", h.Breaker())
	r.Delete("/pools/:pool/breakers/:token", h.RemoveBreaker())
}

// SwapRequest is bound from the query string. Amount is in raw units of the
// token the kind fixes.
type SwapRequest struct {
	TokenIn  string `query:"token_in" json:"token_in"`
	TokenOut string `query:"token_out" json:"token_out"`
	Amount   string `query:"amount" json:"amount"`
	Kind     string `query:"kind" json:"kind"`
}

// Swap responds with the amount out (given_in) or amount in (given_out) as a
// plain base-10 integer.
func (h *PoolHandler) Swap() fiber.Handler {
	return func(c fiber.Ctx) error {
		pool, err := h.poolParam(c)
		if err != nil {
			return err
		}

		var req SwapRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}
		if err := h.validateTokens(&req); err != nil {
			return err
		}
		kind, err := service.ParseSwapKind(req.Kind)
		if err != nil {
			return NewRejected(err)
		}
		amount, err := h.parseAmount(req.Amount, false)
		if err != nil {
			return NewInvalidAmount("amount", err)
		}

		result, err := h.service.QuoteSwap(c.Context(), pool, common.HexToAddress(req.TokenIn), common.HexToAddress(req.TokenOut), amount, kind)
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("swap quoted", "pool", pool.Hex(), "token_in", req.TokenIn, "token_out", req.TokenOut, "kind", kind, "amount", amount.Dec(), "result", result.Dec())
		return c.SendString(result.Dec())
	}
}

// JoinRequest is the body of a join quote. AmountsIn is read by
// exact_tokens_in_for_bpt_out, BptOut by the other kinds and TokenIndex by
// token_in_for_exact_bpt_out.
type JoinRequest struct {
	Kind       string   `json:"kind"`
	AmountsIn  []string `json:"amounts_in"`
	BptOut     string   `json:"bpt_out"`
	TokenIndex int      `json:"token_index"`
}

// ExitRequest is the body of an exit quote.
type ExitRequest struct {
	Kind       string   `json:"kind"`
	AmountsOut []string `json:"amounts_out"`
	BptIn      string   `json:"bpt_in"`
	TokenIndex int      `json:"token_index"`
}

// LiquidityResponse carries raw token amounts and BPT, all base-10 strings.
type LiquidityResponse struct {
	Bpt     *uint256.Int   `json:"bpt"`
	Amounts []*uint256.Int `json:"amounts"`
}

func (h *PoolHandler) Join() fiber.Handler {
	return func(c fiber.Ctx) error {
		pool, err := h.poolParam(c)
		if err != nil {
			return err
		}

		var body JoinRequest
		if err := c.Bind().JSON(&body); err != nil {
			h.logger.Debug("failed to bind join body", "err", err)
			return ErrInvalidBody
		}
		kind, err := weighted.ParseJoinKind(body.Kind)
		if err != nil {
			return NewRejected(err)
		}
		amounts, err := h.parseAmounts("amounts_in", body.AmountsIn)
		if err != nil {
			return err
		}
		bpt, err := h.parseOptionalAmount("bpt_out", body.BptOut)
		if err != nil {
			return err
		}

		res, err := h.service.QuoteJoin(c.Context(), pool, weighted.JoinRequest{
			Kind:       kind,
			Amounts:    amounts,
			Bpt:        bpt,
			TokenIndex: body.TokenIndex,
		})
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("join quoted", "pool", pool.Hex(), "kind", kind, "bpt", res.Bpt.Dec())
		return c.JSON(LiquidityResponse{Bpt: res.Bpt, Amounts: res.Amounts})
	}
}

func (h *PoolHandler) Exit() fiber.Handler {
	return func(c fiber.Ctx) error {
		pool, err := h.poolParam(c)
		if err != nil {
			return err
		}

		var body ExitRequest
		if err := c.Bind().JSON(&body); err != nil {
			h.logger.Debug("failed to bind exit body", "err", err)
			return ErrInvalidBody
		}
		kind, err := weighted.ParseExitKind(body.Kind)
		if err != nil {
			return NewRejected(err)
		}
		amounts, err := h.parseAmounts("amounts_out", body.AmountsOut)
		if err != nil {
			return err
		}
		bpt, err := h.parseOptionalAmount("bpt_in", body.BptIn)
		if err != nil {
			return err
		}

		res, err := h.service.QuoteExit(c.Context(), pool, weighted.ExitRequest{
			Kind:       kind,
			Amounts:    amounts,
			Bpt:        bpt,
			TokenIndex: body.TokenIndex,
		})
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("exit quoted", "pool", pool.Hex(), "kind", kind, "bpt", res.Bpt.Dec())
		return c.JSON(LiquidityResponse{Bpt: res.Bpt, Amounts: res.Amounts})
	}
}

func (h *PoolHandler) poolParam(c fiber.Ctx) (common.Address, error) {
	return addressParam(c, "pool")
}

func addressParam(c fiber.Ctx, name string) (common.Address, error) {
	v := c.Params(name)
	if v == "" {
		return common.Address{}, NewAddressRequired(name)
	}
	if !common.IsHexAddress(v) {
		return common.Address{}, NewInvalidAddress(name)
	}
	return common.HexToAddress(v), nil
}

func (h *PoolHandler) validateTokens(req *SwapRequest) error {
	for _, f := range []struct{ name, addr string }{{"token_in", req.TokenIn}, {"token_out", req.TokenOut}} {
		if f.addr == "" {
			return NewAddressRequired(f.name)
		}
		if !common.IsHexAddress(f.addr) {
			return NewInvalidAddress(f.name)
		}
	}
	if common.HexToAddress(req.TokenIn) == common.HexToAddress(req.TokenOut) {
		return ErrSameAddresses
	}
	return nil
}

// parseAmount parses a base-10 integer that fits in 256 bits.
func (h *PoolHandler) parseAmount(amountStr string, allowZero bool) (*uint256.Int, error) {
	if amountStr == "" {
		return nil, ErrAmountRequired
	}

	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok || amount.Sign() < 0 {
		return nil, ErrInvalidAmountFormat
	}
	if amount.Sign() == 0 && !allowZero {
		return nil, ErrAmountNonPositive
	}

	z, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountTooLarge
	}
	return z, nil
}

func (h *PoolHandler) parseOptionalAmount(field, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, nil
	}
	z, err := h.parseAmount(s, true)
	if err != nil {
		return nil, NewInvalidAmount(field, err)
	}
	return z, nil
}

func (h *PoolHandler) parseAmounts(field string, ss []string) ([]*uint256.Int, error) {
	if ss == nil {
		return nil, nil
	}
	out := make([]*uint256.Int, len(ss))
	for i, s := range ss {
		z, err := h.parseAmount(s, true)
		if err != nil {
			return nil, NewInvalidAmount(field, err)
		}
		out[i] = z
	}
	return out, nil
}

func (h *PoolHandler) handleServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSameToken):
		return ErrSameTokenBadRequest
	case errors.Is(err, service.ErrEmptyBalances), errors.Is(err, service.ErrInvalidSupply):
		return ErrEmptyPoolBadRequest
	case errors.Is(err, service.ErrTokenNotInPool):
		return ErrTokenNotInPoolNotFound
	case errors.Is(err, service.ErrBreakerNotFound):
		return ErrBreakerNotFound
	case errors.Is(err, service.ErrNoBreakerStore):
		return ErrBreakersUnavailable
	case errors.Is(err, breaker.ErrBreakerTripped):
		return NewBreakerTripped(err)
	case isRejection(err):
		return NewRejected(err)
	default:
		h.logger.Error("service quote failed", "err", err)
		return ErrQuoteFailedInternal
	}
}

// rejections are errors caused by the request itself rather than the node.
var rejections = []error{
	weighted.ErrExcessiveAmount,
	weighted.ErrExcessiveOutput,
	weighted.ErrInvalidWeights,
	weighted.ErrInvalidFee,
	weighted.ErrInvalidPool,
	weighted.ErrZeroInvariant,
	weighted.ErrLengthMismatch,
	weighted.ErrUnknownKind,
	weighted.ErrTokenIndex,
	weighted.ErrInvalidPriceRatio,
	breaker.ErrInvalidBounds,
	fixedpoint.ErrOverflow,
	fixedpoint.ErrUnderflow,
	fixedpoint.ErrDivisionByZero,
	logexp.ErrOutOfDomain,
}

func isRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
