package httpcore

// Body framing state packed into one uint32 per §3 of the design: the
// top two bits select the mode, the low 30 bits carry the mode's own
// payload (remaining byte count for length mode, the chunked decoder's
// packed sub-state for chunked mode). Zero means no body in progress.
const (
	bodyModeNone    uint32 = 0
	bodyModeLength  uint32 = 1 << 30
	bodyModeChunked uint32 = 2 << 30
	bodyModeMask    uint32 = 3 << 30
	bodyPayloadMask uint32 = (1 << 30) - 1
)

func bodyMode(state uint32) uint32 {
	return state & bodyModeMask
}

func bodyPayload(state uint32) uint32 {
	return state & bodyPayloadMask
}

func packBodyState(mode, payload uint32) uint32 {
	return mode | (payload & bodyPayloadMask)
}

var methodGet = []byte("get")

// decideBodyFraming inspects a just-completed request head and chooses
// how its body (if any) is framed, per §4.5. A GET request (already
// lower-cased by the header decoder) never has a body: the driver emits
// a single empty, fin=true chunk instead of entering any streaming mode.
//
// An unparsable Content-Length value is treated the same as an absent
// one, consistent with the wire-surface rule that Transfer-Encoding is
// assumed chunked whenever Content-Length is absent on a non-GET
// request (see open question (a) in the design notes).
func decideBodyFraming(req *Request) (state uint32, immediateEmptyBody bool) {
	if bytesEqual(req.Method(), methodGet) {
		return bodyModeNone, true
	}

	if cl := req.Header(headerContentLength); cl != nil {
		if n, ok := parseContentLength(cl); ok {
			if n == 0 {
				return bodyModeNone, true
			}
			return packBodyState(bodyModeLength, n), false
		}
	}

	return packBodyState(bodyModeChunked, 0), false
}

// parseContentLength parses a decimal, non-negative Content-Length
// value that must fit in the 30-bit counter the body framing state
// reserves for it. Leading whitespace has already been skipped by the
// header decoder; trailing whitespace is not trimmed, so a value that
// carries any fails to parse.
func parseContentLength(value []byte) (uint32, bool) {
	if len(value) == 0 {
		return 0, false
	}
	var n uint64
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > uint64(bodyPayloadMask) {
			return 0, false
		}
	}
	return uint32(n), true
}

// stepLength emits as much of a length-delimited body as window holds,
// capped at remaining. final reports whether this emission reaches the
// end of the body.
func stepLength(window []byte, remaining uint32) (consumed int, emit []byte, final bool) {
	n := uint32(len(window))
	if n > remaining {
		n = remaining
	}
	return int(n), window[:n], n == remaining
}
