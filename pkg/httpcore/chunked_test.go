package httpcore

import "testing"

func drainChunked(t *testing.T, fragments []string) (chunks []string, fins []bool) {
	t.Helper()
	var state uint32
	for _, frag := range fragments {
		window := []byte(frag)
		pos := 0
		for pos < len(window) {
			consumed, next, emit, final, hasEmit, done, err := stepChunked(window[pos:], state)
			if err != nil {
				t.Fatalf("stepChunked error: %v", err)
			}
			pos += consumed
			state = next
			if hasEmit {
				chunks = append(chunks, string(emit))
				fins = append(fins, final)
			}
			if done {
				return
			}
			if consumed == 0 {
				break
			}
		}
	}
	return
}

func TestStepChunkedSingleChunk(t *testing.T) {
	chunks, fins := drainChunked(t, []string{"3\r\nfoo\r\n0\r\n\r\n"})
	if len(chunks) != 2 || chunks[0] != "foo" || fins[0] || chunks[1] != "" || !fins[1] {
		t.Fatalf("chunks=%v fins=%v", chunks, fins)
	}
}

func TestStepChunkedMultipleChunks(t *testing.T) {
	chunks, fins := drainChunked(t, []string{"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"})
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3: %v", len(chunks), chunks)
	}
	if chunks[0] != "Wiki" || chunks[1] != "pedia" || chunks[2] != "" || !fins[2] {
		t.Fatalf("chunks=%v fins=%v", chunks, fins)
	}
}

// assertConservesBody checks the byte-conservation property (§8.5): the
// concatenation of emitted chunks equals want regardless of how the
// decoder happened to split emissions across resumptions, and fin is
// set on exactly the last emission.
func assertConservesBody(t *testing.T, chunks []string, fins []bool, want string) {
	t.Helper()
	if len(chunks) == 0 {
		t.Fatalf("no chunks emitted")
	}
	var got string
	for i, c := range chunks {
		isLast := i == len(chunks)-1
		if fins[i] != isLast {
			t.Errorf("fin at index %d = %v, want %v (only the last emission should carry fin)", i, fins[i], isLast)
		}
		if !isLast {
			got += c
		} else if c != "" {
			t.Errorf("final emission = %q, want empty (terminating chunk)", c)
		}
	}
	if got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestStepChunkedSplitAcrossEveryByte(t *testing.T) {
	full := "3\r\nfoo\r\n0\r\n\r\n"
	var fragments []string
	for i := 0; i < len(full); i++ {
		fragments = append(fragments, full[i:i+1])
	}
	chunks, fins := drainChunked(t, fragments)
	assertConservesBody(t, chunks, fins, "foo")
}

func TestStepChunkedSplitMidCRLF(t *testing.T) {
	// Split right between the size line's CR and LF, and again inside the
	// chunk data, and again inside the trailing CRLF after chunk data.
	chunks, fins := drainChunked(t, []string{"3\r", "\nfo", "o\r", "\n0\r\n\r\n"})
	assertConservesBody(t, chunks, fins, "foo")
}

func TestStepChunkedExtensionIsSkipped(t *testing.T) {
	chunks, fins := drainChunked(t, []string{"3;ext=1\r\nfoo\r\n0\r\n\r\n"})
	if len(chunks) != 2 || chunks[0] != "foo" || fins[0] || chunks[1] != "" || !fins[1] {
		t.Fatalf("chunks=%v fins=%v", chunks, fins)
	}
}

func TestStepChunkedTrailerConsumedAndDiscarded(t *testing.T) {
	chunks, fins := drainChunked(t, []string{"3\r\nfoo\r\n0\r\nX-Trailer: v\r\n\r\n"})
	if len(chunks) != 2 || chunks[0] != "foo" || chunks[1] != "" || !fins[1] {
		t.Fatalf("chunks=%v fins=%v", chunks, fins)
	}
}

func TestStepChunkedBadHexIsError(t *testing.T) {
	_, _, _, _, _, _, err := stepChunked([]byte("zz\r\n"), 0)
	if err != ErrChunkedFraming {
		t.Errorf("err = %v, want ErrChunkedFraming", err)
	}
}

func TestStepChunkedMissingLFAfterSizeIsError(t *testing.T) {
	_, _, _, _, _, _, err := stepChunked([]byte("3\rx"), 0)
	if err != ErrChunkedFraming {
		t.Errorf("err = %v, want ErrChunkedFraming", err)
	}
}

func TestStepChunkedMissingCRAfterBodyIsError(t *testing.T) {
	state := packChunkState(false, csAwaitingBodyCRLF, 0)
	_, _, _, _, _, _, err := stepChunked([]byte("xx"), state)
	if err != ErrChunkedFraming {
		t.Errorf("err = %v, want ErrChunkedFraming", err)
	}
}

func TestChunkStatePacking(t *testing.T) {
	for _, tc := range []struct {
		pendingCR bool
		sub       chunkSubstate
		val       uint32
	}{
		{false, csAwaitingSize, 0},
		{true, csInBody, 12345},
		{false, csAwaitingTrailer, maxChunkValue},
	} {
		packed := packChunkState(tc.pendingCR, tc.sub, tc.val)
		gotCR, gotSub, gotVal := unpackChunkState(packed)
		if gotCR != tc.pendingCR || gotSub != tc.sub || gotVal != tc.val {
			t.Errorf("roundtrip(%v, %v, %v) = (%v, %v, %v)", tc.pendingCR, tc.sub, tc.val, gotCR, gotSub, gotVal)
		}
	}
}
