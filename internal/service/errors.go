package service

import "errors"

var (
	ErrSameToken       = errors.New("token in and token out are equal")
	ErrTokenNotInPool  = errors.New("token is not in pool")
	ErrEmptyBalances   = errors.New("pool has empty balances")
	ErrInvalidSupply   = errors.New("pool has zero total supply")
	ErrBreakerNotFound = errors.New("no breaker configured for token")
	ErrUnknownSwapKind = errors.New("unknown swap kind")
	ErrNoBreakerStore  = errors.New("breaker store not configured")
)
