package breaker

import "errors"

var (
	// ErrBreakerTripped is returned when a post-operation BPT price falls
	// outside the configured bounds. The enclosing operation must be
	// rejected as a whole.
	ErrBreakerTripped = errors.New("circuit breaker tripped")
	ErrInvalidBounds  = errors.New("invalid circuit breaker bounds")
)
