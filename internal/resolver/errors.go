package resolver

import "errors"

// Resolution outcomes the API layer maps to response codes. Threshold
// misses are not errors: they only empty the ranked list, which surfaces as
// ErrNoMatch so callers can distinguish "no such address" from "need more
// text".
var (
	// ErrInsufficientInput means neither street nor city text was present,
	// so there is nothing to search on. Recoverable: the caller should
	// re-prompt.
	ErrInsufficientInput = errors.New("resolver: no usable textual field to search on")

	// ErrNoMatch means every candidate fell below the acceptance threshold
	// or was rejected by a structured-field contradiction.
	ErrNoMatch = errors.New("resolver: no candidate met the acceptance threshold")
)
