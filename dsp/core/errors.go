package core

import "errors"

// Error taxonomy shared by all packages. Callers match with errors.Is; the
// returned errors wrap these with the offending value.
var (
	// ErrParse reports a malformed partial specification.
	ErrParse = errors.New("parse error")
	// ErrConfig reports an invalid numeric parameter rejected at construction.
	ErrConfig = errors.New("configuration error")
)
