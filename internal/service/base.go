// Package service loads weighted pool state on chain and evaluates swaps,
// joins, exits and circuit breakers against it.
package service

import "log/slog"

// BaseService provides common dependencies for service types.
type BaseService struct {
	logger *slog.Logger
}
