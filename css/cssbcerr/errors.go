// Package cssbcerr holds the sentinel errors shared across the css
// packages. They are deliberately coarse: recoverable per-declaration
// and per-rule conditions never reach the caller as errors (see §7 of
// the design notes) — only the handful of fatal / flow conditions the
// lifecycle API exposes do.
package cssbcerr

import "errors"

var (
	// ErrNoMem signals allocation failure. Propagated unchanged; never
	// recovered from.
	ErrNoMem = errors.New("cssbc: allocation failed")

	// ErrInvalid signals malformed input that a caller asked to be
	// treated as fatal. No operation in the css packages returns it;
	// inline-style syntax errors are recorded like any other
	// recoverable error.
	ErrInvalid = errors.New("cssbc: invalid input")

	// ErrNeedData is returned by Tokenizer.Next when it reached the end
	// of the buffered window without completing a token and the source
	// has not been marked Done. It is flow, not failure: AppendData
	// absorbs it and returns nil.
	ErrNeedData = errors.New("cssbc: need more data")

	// ErrBadParam signals a StylesheetParams validation failure.
	ErrBadParam = errors.New("cssbc: bad parameter")

	// ErrNotFound is available to the Import capability callback for a
	// resource that does not exist. The Color and Font callbacks report
	// a miss with a false bool instead of an error.
	ErrNotFound = errors.New("cssbc: not found")

	// ErrClosed is returned by operations attempted after DataDone or
	// Destroy have already run.
	ErrClosed = errors.New("cssbc: stylesheet already closed")
)
