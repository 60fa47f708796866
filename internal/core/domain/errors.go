package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotFound indicates no semantic index exists for the
	// requested subject, year and semester combination.
	ErrIndexNotFound = errors.New("semantic index not found")

	// ErrGenerationFailed indicates the generation backend returned an
	// error or produced no usable output.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrGenerationTimeout indicates the generation backend did not
	// respond within the configured deadline.
	ErrGenerationTimeout = errors.New("answer generation timed out")

	// ErrMemoryUnavailable indicates the conversation store could not be
	// read or written. Callers should retry rather than silently drop
	// the exchange.
	ErrMemoryUnavailable = errors.New("conversation memory unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
