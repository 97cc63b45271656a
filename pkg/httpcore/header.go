package httpcore

// headerSlot is a (key, value) pair of slices into the caller's buffer.
// Slot 0 always holds the request line, repurposed as key=method and
// value=target; slots 1..n hold header lines; slot n is the sentinel
// with a zero-length key.
type headerSlot struct {
	key   []byte
	value []byte
}

// decodeHead parses the request line and header block starting at
// buf[start], with buf[:end] holding real data and buf[end], buf[end+1]
// holding the caller's post-padding sentinel (see writeSentinel). It
// writes into headers and returns the number of bytes consumed through
// the terminating CRLFCRLF and the number of real header slots filled
// (headers[0] is the request line; n is the index of the sentinel slot).
//
// ok is false whenever the head is not complete and valid within
// buf[start:end]. malformed distinguishes why: true means real bytes
// already in the buffer disagree with HTTP/1.x framing and no amount
// of additional data would fix that; false means the buffer simply
// ends before enough is known (more bytes might complete the head).
// The caller uses this to decide between buffering for more data and
// giving up, per the driver's policy -- malformed=false is the "not
// yet" case, malformed=true is the "never" case.
func decodeHead(buf []byte, start, end int, headers *[MaxHeaders]headerSlot) (consumed, n int, ancient, ok, malformed bool) {
	limit := end + 1
	pos := start

	for i := 0; i < MaxHeaders-1; i++ {
		keyStart := pos
		for pos < end && buf[pos] != ':' && buf[pos] >= 33 {
			if buf[pos] >= 'A' && buf[pos] <= 'Z' {
				buf[pos] |= 0x20
			}
			pos++
		}
		if pos >= end {
			return 0, 0, false, false, false
		}
		key := buf[keyStart:pos]

		if pos+1 < end && buf[pos] == ':' && buf[pos+1] == ' ' {
			pos += 2
		} else {
			for pos < end && (buf[pos] == ':' || (buf[pos] != '\r' && buf[pos] <= ' ')) {
				pos++
			}
		}
		valueStart := pos

		crPos := findCR(buf, pos, limit)
		if crPos < 0 || crPos >= end {
			return 0, 0, false, false, false
		}
		if buf[crPos+1] != '\n' {
			if crPos+1 == end {
				return 0, 0, false, false, false
			}
			return 0, 0, false, false, true
		}
		value := buf[valueStart:crPos]
		pos = crPos + 2

		var lineAncient bool
		if i == 0 {
			value, lineAncient = splitRequestLineSuffix(value)
			ancient = lineAncient
		}
		headers[i] = headerSlot{key: key, value: value}

		if pos >= end {
			return 0, 0, false, false, false
		}
		if buf[pos] == '\r' {
			if pos+1 == end {
				return 0, 0, false, false, false
			}
			if buf[pos+1] == '\n' {
				headers[i+1] = headerSlot{}
				return pos + 2, i + 1, ancient, true, false
			}
			return 0, 0, false, false, true
		}
	}

	return 0, 0, false, false, true
}

// splitRequestLineSuffix strips the trailing " HTTP/1.x" from a request
// target and reports whether the version was HTTP/1.0.
func splitRequestLineSuffix(value []byte) (target []byte, ancient bool) {
	if len(value) >= 9 && value[len(value)-9] == ' ' {
		ver := value[len(value)-8:]
		if asciiEqualFold(ver, httpSlash11) {
			return value[:len(value)-9], false
		}
		if asciiEqualFold(ver, httpSlash10) {
			return value[:len(value)-9], true
		}
	}
	return value, false
}

func asciiEqualFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca |= 0x20
		}
		if cb >= 'A' && cb <= 'Z' {
			cb |= 0x20
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// lookupHeader performs the bloom-gated linear scan over headers[1:n]
// described by the request view's header() operation: a negative bloom
// result means there is no chance of a match, so the scan is skipped
// entirely.
func lookupHeader(headers *[MaxHeaders]headerSlot, n int, bf *bloomFilter, lowerKey []byte) []byte {
	if !bf.mightHave(lowerKey) {
		return nil
	}
	for i := 1; i < n; i++ {
		k := headers[i].key
		if len(k) == len(lowerKey) && bytesEqual(k, lowerKey) {
			return headers[i].value
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
