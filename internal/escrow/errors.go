package escrow

import "errors"

// Error taxonomy surfaced to command handlers. Handlers map these onto
// user-visible rejections; anything else is an internal failure.
var (
	// ErrNotAuthorized means the invoker lacks the required role.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrValidation means a malformed or out-of-range argument.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the referenced deal, escrower or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means a transition was attempted on a terminal or
	// wrong-state deal.
	ErrInvalidState = errors.New("invalid deal state")
	// ErrInsufficientHold means a cut exceeds the remaining hold. The
	// operation is rejected entirely, never partially applied.
	ErrInsufficientHold = errors.New("insufficient hold")
	// ErrPartialCounters means the idempotency gate committed but one or
	// more counter increments failed. The deal closure itself stands.
	ErrPartialCounters = errors.New("partial counter failure")
)
