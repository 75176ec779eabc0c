package entities

import "errors"

var (
	// ErrInvalidAddress means the wallet identifier is missing or malformed
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrUpstreamUnavailable means the chain RPC provider failed while building a snapshot
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrPriceUnavailable means a single price lookup could not be resolved.
	// It never leaves the price resolver; callers receive the fallback price instead.
	ErrPriceUnavailable = errors.New("price unavailable")
)
