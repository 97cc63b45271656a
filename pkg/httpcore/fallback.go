package httpcore

import "sync"

// fallbackPool recycles the backing arrays behind fallbackBuffer. A
// plain sync.Pool of []byte is the same size-classed-pooling idiom
// pkg/bufpool uses for receive buffers, just unsized here since a
// fallback buffer never grows past MaxFallbackSize.
var fallbackPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, MaxFallbackSize+2)
		return &buf
	},
}

// fallbackBuffer is the bounded per-connection carry-over described in
// §3: non-empty only when the previous Consume call ended mid-head with
// no body in progress, and drained as soon as enough bytes arrive to
// complete one. Backed by a sync.Pool so idle connections don't hold a
// private allocation between heads.
type fallbackBuffer struct {
	buf *[]byte
}

func (f *fallbackBuffer) len() int {
	if f.buf == nil {
		return 0
	}
	return len(*f.buf)
}

// bytes returns the buffer's current contents, or nil if empty. The
// returned slice is only valid until the next append, decodeHead, or
// release call.
func (f *fallbackBuffer) bytes() []byte {
	if f.buf == nil {
		return nil
	}
	return *f.buf
}

func (f *fallbackBuffer) ensure() {
	if f.buf == nil {
		b := fallbackPool.Get().(*[]byte)
		*b = (*b)[:0]
		f.buf = b
	}
}

func (f *fallbackBuffer) release() {
	if f.buf != nil {
		fallbackPool.Put(f.buf)
		f.buf = nil
	}
}

// append copies as much of window into the fallback buffer as fits
// under MaxFallbackSize, reporting how many bytes it took and whether
// the buffer is now at capacity.
func (f *fallbackBuffer) append(window []byte) (taken int, full bool) {
	f.ensure()
	room := MaxFallbackSize - len(*f.buf)
	if room <= 0 {
		return 0, true
	}
	taken = len(window)
	if taken > room {
		taken = room
	}
	*f.buf = append(*f.buf, window[:taken]...)
	return taken, len(*f.buf) >= MaxFallbackSize
}

// decodeHead runs the head decoder over the fallback buffer's current
// contents, temporarily growing it by the two sentinel bytes decodeHead
// requires and shrinking back to the logical length afterward so a
// later append sees the true carry-over size.
func (f *fallbackBuffer) decodeHead(headers *[MaxHeaders]headerSlot) (consumed, n int, ancient, ok, malformed bool) {
	f.ensure()
	length := len(*f.buf)
	for len(*f.buf) < length+2 {
		*f.buf = append(*f.buf, 0)
	}
	writeSentinel(*f.buf, length)
	consumed, n, ancient, ok, malformed = decodeHead(*f.buf, 0, length, headers)
	*f.buf = (*f.buf)[:length]
	return
}
