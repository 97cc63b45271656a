package httpcore

// Request is the view the parser hands to the request callback for
// each completed head. It borrows every byte slice it exposes from the
// buffer passed to Consume (or from the connection's fallback buffer);
// none of it is valid once the callback returns, unless the caller
// copies it out first.
type Request struct {
	headers     [MaxHeaders]headerSlot
	n           int
	ancientHTTP bool
	querySep    int
	bf          bloomFilter

	params []string
	yield  bool
}

func (r *Request) reset(consumedHeaders int, ancient bool) {
	r.n = consumedHeaders
	r.ancientHTTP = ancient
	r.params = nil
	r.yield = false

	r.bf.reset()
	for i := 1; i < r.n; i++ {
		r.bf.add(r.headers[i].key)
	}

	target := r.headers[0].value
	sep := -1
	for i, c := range target {
		if c == '?' {
			sep = i
			break
		}
	}
	if sep < 0 {
		r.querySep = len(target)
	} else {
		r.querySep = sep
	}
}

// Method returns the lower-cased HTTP method, e.g. "get".
func (r *Request) Method() []byte {
	return r.headers[0].key
}

// Target returns the full request-target as sent on the wire, without
// the " HTTP/1.x" suffix, including the query string if present.
func (r *Request) Target() []byte {
	return r.headers[0].value
}

// URL returns the request target up to, but excluding, the '?'.
func (r *Request) URL() []byte {
	return r.headers[0].value[:r.querySep]
}

// Query returns the raw query string with the leading '?' stripped, or
// an empty slice if the target carried no query.
func (r *Request) Query() []byte {
	target := r.headers[0].value
	if r.querySep >= len(target) {
		return nil
	}
	return target[r.querySep+1:]
}

// RawQueryWithMarker returns the query portion of the target including
// its leading '?' (or an empty slice if there is none). This is the
// form the URL-decoding routine in package queryutil expects.
func (r *Request) RawQueryWithMarker() []byte {
	target := r.headers[0].value
	if r.querySep >= len(target) {
		return nil
	}
	return target[r.querySep:]
}

// Header looks up a header by its lower-cased name. It returns nil if
// no such header was present on the wire.
func (r *Request) Header(lowerKey []byte) []byte {
	return lookupHeader(&r.headers, r.n, &r.bf, lowerKey)
}

// Headers iterates over every header line in wire order, skipping the
// request line at slot 0 and the terminating sentinel.
func (r *Request) Headers(yield func(key, value []byte) bool) {
	for i := 1; i < r.n; i++ {
		if !yield(r.headers[i].key, r.headers[i].value) {
			return
		}
	}
}

// Parameter returns the route parameter at index, or an empty string
// when index is out of range. The parameter slice itself is opaque to
// the parser; it is assigned by whatever router consumes the request.
func (r *Request) Parameter(index int) string {
	if index < 0 || index >= len(r.params) {
		return ""
	}
	return r.params[index]
}

// SetParameters attaches route parameters to the request. The parser
// never reads or writes this outside of this setter.
func (r *Request) SetParameters(params []string) {
	r.params = params
}

// Yield reports the application-settable yield flag. The parser never
// reads it; it exists purely as a slot a router or handler can use to
// communicate across itself.
func (r *Request) Yield() bool {
	return r.yield
}

// SetYield sets the yield flag.
func (r *Request) SetYield(yield bool) {
	r.yield = yield
}

// Ancient reports whether the request line ended in "HTTP/1.0".
func (r *Request) Ancient() bool {
	return r.ancientHTTP
}
