package handler

import "github.com/gofiber/fiber/v3"

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrInvalidBody indicates that the JSON request body could not be decoded.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrSameAddresses is returned when token_in and token_out are identical.
var ErrSameAddresses = fiber.NewError(fiber.StatusBadRequest, "token_in and token_out cannot be the same")

// ErrAmountRequired is returned when the amount parameter is missing.
var ErrAmountRequired = fiber.NewError(fiber.StatusBadRequest, "amount is required")

// ErrInvalidAmountFormat is returned when the amount cannot be parsed as a
// base-10 integer.
var ErrInvalidAmountFormat = fiber.NewError(fiber.StatusBadRequest, "invalid amount format")

// ErrAmountNonPositive is returned when the amount is zero.
var ErrAmountNonPositive = fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")

// ErrAmountTooLarge is returned when the amount does not fit in 256 bits.
var ErrAmountTooLarge = fiber.NewError(fiber.StatusBadRequest, "amount does not fit in 256 bits")

// ErrSameTokenBadRequest maps a same-token validation failure to a 400 error.
var ErrSameTokenBadRequest = fiber.NewError(fiber.StatusBadRequest, "token_in and token_out cannot be the same")

// ErrEmptyPoolBadRequest maps an empty or unminted pool to a 400 error.
var ErrEmptyPoolBadRequest = fiber.NewError(fiber.StatusBadRequest, "pool has no liquidity")

// ErrTokenNotInPoolNotFound maps an unknown token to a 404 error.
var ErrTokenNotInPoolNotFound = fiber.NewError(fiber.StatusNotFound, "token is not in pool")

// ErrBreakerNotFound maps a missing breaker to a 404 error.
var ErrBreakerNotFound = fiber.NewError(fiber.StatusNotFound, "no breaker configured for token")

// ErrBreakersUnavailable is returned when the server runs without a breaker
// store.
var ErrBreakersUnavailable = fiber.NewError(fiber.StatusNotImplemented, "breakers are not enabled")

// ErrQuoteFailedInternal signals a generic server-side quoting error.
var ErrQuoteFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "quote failed")

// NewInvalidAmount wraps an amount parsing error into a 400 Bad Request with
// a descriptive message.
func NewInvalidAmount(field string, err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+": "+err.Error())
}

// NewAddressRequired returns a 400 Bad Request for a missing address field.
func NewAddressRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

// NewInvalidAddress returns a 400 Bad Request for an invalid address format.
func NewInvalidAddress(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}

// NewBreakerTripped returns a 409 Conflict carrying the tripped bound.
func NewBreakerTripped(err error) error {
	return fiber.NewError(fiber.StatusConflict, err.Error())
}

// NewRejected returns a 422 Unprocessable Entity for a request the pool math
// refuses.
func NewRejected(err error) error {
	return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
}
