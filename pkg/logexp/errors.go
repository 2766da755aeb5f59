package logexp

import "errors"

// ErrOutOfDomain is returned when an argument or an intermediate product lies
// outside the range the approximations are valid for.
var ErrOutOfDomain = errors.New("argument out of domain")
