package httpcore

import "bytes"

// writeSentinel stamps the two post-padding bytes a caller promised are
// writable past buf[length]. findCR relies on the sentinel CR to
// guarantee termination without ever reading past buf[length+1]: a CR
// found at buf[length] is not real data, and the filler byte at
// buf[length+1] can never be mistaken for a line feed.
func writeSentinel(buf []byte, length int) {
	buf[length] = sentinelCR
	buf[length+1] = sentinelFiller
}

// findCR returns the offset of the first 0x0D byte at or after start
// within buf[:limit]. limit must be at most len(buf); callers that rely
// on the sentinel contract pass limit = length+1 (or further, into body
// post-padding) so the scan always terminates.
//
// A plain bytes.IndexByte is used rather than a hand-rolled SWAR loop:
// the standard library's implementation is already a wide-word scan on
// every platform Go supports, and the sentinel contract is what makes
// this correct, not the scan strategy.
func findCR(buf []byte, start, limit int) int {
	idx := bytes.IndexByte(buf[start:limit], sentinelCR)
	if idx < 0 {
		return -1
	}
	return start + idx
}
