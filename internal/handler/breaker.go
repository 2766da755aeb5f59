package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/weighted-estimator/internal/service"
	"github.com/nulln0ne/weighted-estimator/pkg/fixedpoint"
)

// BreakerRequest sets the tolerated price-ratio band of a token as decimals,
// for example {"lower": "0.8", "upper": "2"}. "0" or an omitted field
// disables that side.
type BreakerRequest struct {
	Lower string `json:"lower"`
	Upper string `json:"upper"`
}

// BreakerResponse renders a breaker with all values as decimals. Balances
// are normalized to 18 decimals.
type BreakerResponse struct {
	Pool              string `json:"pool"`
	Token             string `json:"token"`
	LowerBound        string `json:"lower_bound"`
	UpperBound        string `json:"upper_bound"`
	ReferenceBptPrice string `json:"reference_bpt_price"`
	ReferenceWeight   string `json:"reference_weight"`
	LowerBptPrice     string `json:"lower_bpt_price"`
	UpperBptPrice     string `json:"upper_bpt_price"`
	LowerBoundBalance string `json:"lower_bound_balance"`
	UpperBoundBalance string `json:"upper_bound_balance"`
	CurrentBalance    string `json:"current_balance"`
}

func newBreakerResponse(v *service.BreakerView) BreakerResponse {
	return BreakerResponse{
		Pool:              v.Pool.Hex(),
		Token:             v.Token.Hex(),
		LowerBound:        fixedpoint.Format(v.State.LowerBound),
		UpperBound:        fixedpoint.Format(v.State.UpperBound),
		ReferenceBptPrice: fixedpoint.Format(v.State.BptPrice),
		ReferenceWeight:   fixedpoint.Format(v.State.ReferenceWeight),
		LowerBptPrice:     fixedpoint.Format(v.LowerBptPrice),
		UpperBptPrice:     fixedpoint.Format(v.UpperBptPrice),
		LowerBoundBalance: fixedpoint.Format(v.LowerBoundBalance),
		UpperBoundBalance: fixedpoint.Format(v.UpperBoundBalance),
		CurrentBalance:    fixedpoint.Format(v.CurrentBalance),
	}
}

func (h *PoolHandler) ConfigureBreaker() fiber.Handler {
	return func(c fiber.Ctx) error {
		pool, err := h.poolParam(c)
		if err != nil {
			return err
		}
		token, err := addressParam(c, "token")
		if err != nil {
			return err
		}

		var body BreakerRequest
		if err := c.Bind().JSON(&body); err != nil {
			h.logger.Debug("failed to bind breaker body", "err", err)
			return ErrInvalidBody
		}
		lower, err := parseRatio("lower", body.Lower)
		if err != nil {
			return err
		}
		upper, err := parseRatio("upper", body.Upper)
		if err != nil {
			return err
		}

		view, err := h.service.ConfigureBreaker(c.Context(), pool, token, lower, upper)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(newBreakerResponse(view))
	}
}

func (h *PoolHandler) Breaker() fiber.Handler {
	return func(c fiber.Ctx) error {
		pool, err := h.poolParam(c)
		if err != nil {
			return err
		}
		token, err := addressParam(c, "token")
		if err != nil {
			return err
		}

		view, err := h.service.Breaker(c.Context(), pool, token)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(newBreakerResponse(view))
	}
}

func (h *PoolHandler) RemoveBreaker() fiber.Handler {
	return func(c fiber.Ctx) error {
		pool, err := h.poolParam(c)
		if err != nil {
			return err
		}
		token, err := addressParam(c, "token")
		if err != nil {
			return err
		}
		if err := h.service.RemoveBreaker(c.Context(), pool, token); err != nil {
			return h.handleServiceError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseRatio(field, s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	z, err := fixedpoint.Parse(s)
	if err != nil {
		return nil, NewInvalidAmount(field, err)
	}
	return z, nil
}
