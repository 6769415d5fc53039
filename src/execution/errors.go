package execution

import "errors"

// Stable failure kinds. Callers branch on these with errors.Is; none are
// retried internally.
var (
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoHolding           = errors.New("no holding")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrLiveModeUnsupported = errors.New("live execution mode is not implemented")
)
