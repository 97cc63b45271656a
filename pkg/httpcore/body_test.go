package httpcore

import "testing"

func requestWithHeaders(t *testing.T, raw string) *Request {
	t.Helper()
	buf := make([]byte, len(raw)+2)
	copy(buf, raw)
	writeSentinel(buf, len(raw))
	var req Request
	_, n, ancient, ok, malformed := decodeHead(buf, 0, len(raw), &req.headers)
	if !ok || malformed {
		t.Fatalf("decode of %q failed: ok=%v malformed=%v", raw, ok, malformed)
	}
	req.reset(n, ancient)
	return &req
}

func TestDecideBodyFramingGETIsBodiless(t *testing.T) {
	req := requestWithHeaders(t, "GET / HTTP/1.1\r\nContent-Length: 5\r\n\r\n")
	state, immediate := decideBodyFraming(req)
	if !immediate || state != bodyModeNone {
		t.Errorf("GET: state=%d immediate=%v, want bodyModeNone/true", state, immediate)
	}
}

func TestDecideBodyFramingContentLengthWins(t *testing.T) {
	req := requestWithHeaders(t, "POST / HTTP/1.1\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\n")
	state, immediate := decideBodyFraming(req)
	if immediate {
		t.Fatalf("immediate = true, want false (a body is expected)")
	}
	if bodyMode(state) != bodyModeLength || bodyPayload(state) != 5 {
		t.Errorf("state mode=%d payload=%d, want length mode with payload 5", bodyMode(state), bodyPayload(state))
	}
}

func TestDecideBodyFramingZeroContentLengthIsImmediate(t *testing.T) {
	req := requestWithHeaders(t, "POST / HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	state, immediate := decideBodyFraming(req)
	if !immediate || state != bodyModeNone {
		t.Errorf("state=%d immediate=%v, want bodyModeNone/true", state, immediate)
	}
}

func TestDecideBodyFramingNoContentLengthIsChunked(t *testing.T) {
	req := requestWithHeaders(t, "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n")
	state, immediate := decideBodyFraming(req)
	if immediate {
		t.Fatalf("immediate = true, want false")
	}
	if bodyMode(state) != bodyModeChunked {
		t.Errorf("mode = %d, want bodyModeChunked", bodyMode(state))
	}
}

func TestDecideBodyFramingUnparsableContentLengthFallsBackToChunked(t *testing.T) {
	req := requestWithHeaders(t, "POST / HTTP/1.1\r\nContent-Length: notanumber\r\n\r\n")
	state, immediate := decideBodyFraming(req)
	if immediate {
		t.Fatalf("immediate = true, want false")
	}
	if bodyMode(state) != bodyModeChunked {
		t.Errorf("mode = %d, want bodyModeChunked (unparsable Content-Length treated as absent)", bodyMode(state))
	}
}

func TestParseContentLength(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"0", 0, true},
		{"5", 5, true},
		{"1000000", 1000000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12a", 0, false},
		{"4294967295", 0, false}, // exceeds the 30-bit payload mask
	}
	for _, tc := range cases {
		n, ok := parseContentLength([]byte(tc.in))
		if ok != tc.ok || (ok && n != tc.want) {
			t.Errorf("parseContentLength(%q) = (%d, %v), want (%d, %v)", tc.in, n, ok, tc.want, tc.ok)
		}
	}
}

func TestStepLength(t *testing.T) {
	consumed, emit, final := stepLength([]byte("ABCDE"), 5)
	if consumed != 5 || string(emit) != "ABCDE" || !final {
		t.Errorf("consumed=%d emit=%q final=%v", consumed, emit, final)
	}

	consumed, emit, final = stepLength([]byte("AB"), 5)
	if consumed != 2 || string(emit) != "AB" || final {
		t.Errorf("consumed=%d emit=%q final=%v, want 2/AB/false", consumed, emit, final)
	}

	consumed, emit, final = stepLength([]byte("ABCDEFGH"), 5)
	if consumed != 5 || string(emit) != "ABCDE" || !final {
		t.Errorf("consumed=%d emit=%q final=%v, want 5/ABCDE/true", consumed, emit, final)
	}
}
