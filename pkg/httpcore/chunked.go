package httpcore

// chunkSubstate enumerates the phases a resumable chunked-body decode
// can be paused in between Consume calls: reading a size line,
// skipping a chunk extension, inside a chunk with N bytes left,
// awaiting the CRLF after chunk data, and consuming trailer lines
// after the zero-size chunk.
type chunkSubstate uint32

const (
	csAwaitingSize     chunkSubstate = 0
	csSkippingExt      chunkSubstate = 1
	csInBody           chunkSubstate = 2
	csAwaitingBodyCRLF chunkSubstate = 3
	csAwaitingTrailer  chunkSubstate = 4
)

const (
	chunkPendingCRBit  uint32 = 1 << 29
	chunkSubstateShift        = 26
	chunkSubstateMask  uint32 = 0x7 << chunkSubstateShift
	chunkValueMask     uint32 = (1 << 26) - 1
	maxChunkValue      uint32 = chunkValueMask
)

func packChunkState(pendingCR bool, sub chunkSubstate, val uint32) uint32 {
	p := uint32(sub)<<chunkSubstateShift | (val & chunkValueMask)
	if pendingCR {
		p |= chunkPendingCRBit
	}
	return p
}

func unpackChunkState(payload uint32) (pendingCR bool, sub chunkSubstate, val uint32) {
	pendingCR = payload&chunkPendingCRBit != 0
	sub = chunkSubstate((payload & chunkSubstateMask) >> chunkSubstateShift)
	val = payload & chunkValueMask
	return
}

// stepChunked advances a chunked-body decode as far as it can through
// window, starting from the resumable payload produced by a previous
// call (zero for a fresh body). It stops and returns as soon as there
// is something to emit, or when window is exhausted without producing
// an emission, or on a framing error.
//
// consumed is always meaningful; the caller advances its own cursor by
// it regardless of whether an emission was produced. done reports that
// the chunked body (including its terminating CRLF) has been fully
// consumed; the caller should drop back to "no body in progress"
// rather than resume stepChunked again.
func stepChunked(window []byte, payload uint32) (consumed int, next uint32, emit []byte, final, hasEmit, done bool, err error) {
	pendingCR, sub, val := unpackChunkState(payload)
	i := 0

	for i < len(window) {
		if pendingCR {
			if window[i] != '\n' {
				return 0, 0, nil, false, false, false, ErrChunkedFraming
			}
			i++
			pendingCR = false

			switch sub {
			case csAwaitingSize, csSkippingExt:
				if val == 0 {
					sub, val = csAwaitingTrailer, 0
				} else {
					sub = csInBody
				}
			case csAwaitingBodyCRLF:
				sub, val = csAwaitingSize, 0
			case csAwaitingTrailer:
				if val == 0 {
					return i, 0, []byte{}, true, true, true, nil
				}
				val = 0
			}
			continue
		}

		c := window[i]
		switch sub {
		case csAwaitingSize:
			switch {
			case c == '\r':
				pendingCR = true
				i++
			case c == ';':
				sub = csSkippingExt
				i++
			case isHexDigit(c):
				val = val*16 + uint32(hexVal(c))
				if val > maxChunkValue {
					return 0, 0, nil, false, false, false, ErrChunkedFraming
				}
				i++
			default:
				return 0, 0, nil, false, false, false, ErrChunkedFraming
			}

		case csSkippingExt:
			if c == '\r' {
				pendingCR = true
			}
			i++

		case csInBody:
			n := len(window) - i
			if uint32(n) > val {
				n = int(val)
			}
			chunkData := window[i : i+n]
			val -= uint32(n)
			i += n
			newSub := sub
			if val == 0 {
				newSub = csAwaitingBodyCRLF
			}
			return i, packChunkState(false, newSub, val), chunkData, false, true, false, nil

		case csAwaitingBodyCRLF:
			if c != '\r' {
				return 0, 0, nil, false, false, false, ErrChunkedFraming
			}
			pendingCR = true
			i++

		case csAwaitingTrailer:
			if c == '\r' {
				pendingCR = true
			} else {
				val = 1 // non-blank line: a trailer header, not the terminator
			}
			i++
		}
	}

	return i, packChunkState(pendingCR, sub, val), nil, false, false, false, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
