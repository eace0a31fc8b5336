package replay

import "sync/atomic"

// CancellationToken is a cooperative stop request checked between tickets.
type CancellationToken struct {
	requested atomic.Bool
}

// NewCancellationToken returns an unset token.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Request sets the token and reports whether this call was the first request.
func (token *CancellationToken) Request() bool {
	if token == nil {
		return false
	}
	return token.requested.CompareAndSwap(false, true)
}

// Requested reports whether a stop was requested.
func (token *CancellationToken) Requested() bool {
	if token == nil {
		return false
	}
	return token.requested.Load()
}
