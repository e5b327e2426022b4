package quote

import (
	"errors"
	"fmt"
)

// ErrNoSymbols is returned when a lookup is attempted with no usable
// symbols (empty input, or nothing left after filtering blanks).
var ErrNoSymbols = errors.New("symbols is required")

// UpstreamError reports a non-success status from the quote provider.
// It is transient: the caller should keep whatever data it already has.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream %d", e.Status) }

// FetchError reports a transport-level failure: the upstream could not
// be reached, timed out, or returned unparsable content.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch failed: " + e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }
