package engine

import "errors"

// Error taxonomy. Handlers translate these to HTTP codes; blocking states
// (suspension, unverified milestone) are PreconditionFailed rather than
// input errors so callers can render them differently.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrNotFound            = errors.New("not found")
)
