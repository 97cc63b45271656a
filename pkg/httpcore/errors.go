package httpcore

import "errors"

// Sentinel errors surfaced to callers driving a Parser. The parser itself
// never returns these from Consume; they are only meaningful to an error
// handler that wants to know why it was invoked.
var (
	// ErrMalformedHead is reported when a fresh head could not be parsed
	// and no further progress is possible (the window is exhausted and
	// whatever is left does not look like it could become a valid head
	// with more bytes).
	ErrMalformedHead = errors.New("httpcore: malformed request head")

	// ErrFallbackOverflow is reported when a partial head would need to
	// grow the fallback buffer past MaxFallbackSize.
	ErrFallbackOverflow = errors.New("httpcore: fallback buffer overflow")

	// ErrChunkedFraming is reported when a chunked body's framing cannot
	// be decoded (bad hex size, missing CRLF within the chunk window).
	ErrChunkedFraming = errors.New("httpcore: chunked transfer-encoding framing error")
)
