package httpcore

// RequestHandler fires exactly once per completed head, synchronously,
// before any body data for that request. Returning a token different
// from user means the application has taken the connection over;
// parsing for this Consume call stops immediately.
type RequestHandler[T comparable] func(user T, req *Request) T

// DataHandler fires zero-or-more times per request body, always at
// least once per request (an empty slice with fin=true for bodiless
// requests), in arrival order, with fin set on exactly the final call.
type DataHandler[T comparable] func(user T, chunk []byte, fin bool) T

// ErrorHandler fires on fallback overflow, an unrecoverable malformed
// head, or a chunked body framing error. Its return value is propagated as the new user
// token; the connection is expected to be torn down by the caller.
type ErrorHandler[T comparable] func(user T, err error) T

var emptyBody = []byte{}

// Parser is a single-connection, non-blocking HTTP/1.x request parser
// per §2 of the design: per-connection mutable state, driven by
// repeated calls to Consume as bytes arrive from a transport this
// package knows nothing about. A Parser is not safe for concurrent use;
// it is meant to be owned by exactly one connection and re-entered only
// by that connection's event loop.
type Parser[T comparable] struct {
	OnRequest RequestHandler[T]
	OnData    DataHandler[T]
	OnError   ErrorHandler[T]

	state     uint32
	fallback  fallbackBuffer
	proxyDone bool
	req       Request
}

// NewParser constructs a Parser with the given callbacks. Any of them
// may be nil only if the corresponding event truly cannot occur for
// this Parser's configuration; a nil OnRequest or OnData will panic the
// first time a request is actually decoded.
func NewParser[T comparable](onRequest RequestHandler[T], onData DataHandler[T], onError ErrorHandler[T]) *Parser[T] {
	return &Parser[T]{OnRequest: onRequest, OnData: onData, OnError: onError}
}

// Consume feeds length bytes of data to the parser. data[length] and
// data[length+1] must be writable (the caller's post-padding, per the
// buffer contract); if a body may be streamed in place, at least 32
// bytes of post-padding must be writable past data[length].
//
// reserved, when non-nil and implementing ProxyPreamble, is consulted
// before any HTTP head is attempted, until it reports done (see §4.8).
// An incomplete preamble's bytes are stashed to fallback and retried
// against the accumulated window on the next call, exactly like a
// partial head.
//
// Consume returns the current user token: unchanged if parsing may
// continue normally on a later call, or a different value if the
// application (or the error handler) has taken the connection over.
func (p *Parser[T]) Consume(data []byte, length int, user T, reserved any) T {
	pos := 0

	if !p.proxyDone {
		pp, hasProxy := reserved.(ProxyPreamble)
		if !hasProxy || pp == nil {
			p.proxyDone = true
		} else {
			priorFallbackLen := p.fallback.len()
			usingFallback := priorFallbackLen > 0
			window := data[:length]
			if usingFallback {
				p.fallback.append(data[:length])
				window = p.fallback.bytes()
			}

			offset, done := pp.Consume(window)
			switch {
			case done:
				p.proxyDone = true
				if usingFallback && offset < priorFallbackLen {
					// Carried-over bytes the preamble did not claim stay in
					// fallback, ahead of this call's data, so the head
					// decoder below still sees them.
					fb := *p.fallback.buf
					*p.fallback.buf = append(fb[:0], fb[offset:priorFallbackLen]...)
				} else {
					pos = offset - priorFallbackLen
					if usingFallback {
						p.fallback.release()
					}
				}
			case usingFallback && p.fallback.len() >= MaxFallbackSize:
				// The preamble never resolved even after accumulating
				// MaxFallbackSize bytes across calls; give up the way an
				// oversized head would.
				p.fallback.release()
				return p.OnError(user, ErrFallbackOverflow)
			default:
				// Not done yet: the whole window examined so far must be
				// kept, not discarded, so the next call can resume the
				// preamble exactly where this one left off.
				if !usingFallback {
					p.fallback.append(data[:length])
				}
				return user
			}
		}
	}

	writeSentinel(data, length)

	if bodyMode(p.state) != bodyModeNone {
		var cont bool
		user, pos, cont = p.streamBody(data, pos, length, user)
		if !cont {
			return user
		}
	}

	if p.fallback.len() > 0 {
		priorLen := p.fallback.len()
		_, full := p.fallback.append(data[pos:length])
		consumed, n, ancient, ok, malformed := p.fallback.decodeHead(&p.req.headers)

		switch {
		case ok:
			pos += consumed - priorLen
			var cont bool
			user, pos, cont = p.onHeadDecoded(data, pos, length, n, ancient, user)
			// The request view's header slices point into the fallback
			// buffer's backing array until onHeadDecoded (the request
			// handler and body-framing decision) is done reading them;
			// releasing any earlier would hand that array to another
			// connection's Get() while this one still reads it.
			p.fallback.release()
			if !cont {
				return user
			}
		case malformed, full:
			p.fallback.release()
			return p.OnError(user, pickHeadError(malformed))
		default:
			return user
		}
	}

	for pos < length {
		consumed, n, ancient, ok, malformed := decodeHead(data, pos, length, &p.req.headers)
		if !ok {
			taken, full := p.fallback.append(data[pos:length])
			pos += taken
			if malformed || full {
				p.fallback.release()
				return p.OnError(user, pickHeadError(malformed))
			}
			return user
		}

		pos += consumed
		var cont bool
		user, pos, cont = p.onHeadDecoded(data, pos, length, n, ancient, user)
		if !cont {
			return user
		}
	}

	return user
}

func pickHeadError(malformed bool) error {
	if malformed {
		return ErrMalformedHead
	}
	return ErrFallbackOverflow
}

// onHeadDecoded fires the request handler for a just-completed head
// and, if it returns the same token, begins streaming its body.
func (p *Parser[T]) onHeadDecoded(data []byte, pos, length, n int, ancient bool, user T) (newUser T, newPos int, cont bool) {
	p.req.reset(n, ancient)
	u := p.OnRequest(user, &p.req)
	if u != user {
		return u, pos, false
	}
	return p.beginAndStreamBody(data, pos, length, u)
}

// beginAndStreamBody decides the just-completed head's body framing
// per §4.5 and drives it as far as the window in hand allows.
func (p *Parser[T]) beginAndStreamBody(data []byte, pos, length int, user T) (newUser T, newPos int, cont bool) {
	state, immediate := decideBodyFraming(&p.req)
	p.state = state
	if immediate {
		u := p.OnData(user, emptyBody, true)
		if u != user {
			return u, pos, false
		}
		return u, pos, true
	}
	return p.streamBody(data, pos, length, user)
}

// streamBody advances whichever body framing mode p.state currently
// holds, against data[pos:length], until either it runs out of window,
// the body completes, the application hands off, or framing fails.
func (p *Parser[T]) streamBody(data []byte, pos, length int, user T) (newUser T, newPos int, cont bool) {
	switch bodyMode(p.state) {
	case bodyModeLength:
		consumed, emit, final := stepLength(data[pos:length], bodyPayload(p.state))
		if final {
			p.state = bodyModeNone
		} else {
			p.state = packBodyState(bodyModeLength, bodyPayload(p.state)-uint32(consumed))
		}
		pos += consumed
		if consumed > 0 || final {
			u := p.OnData(user, emit, final)
			if u != user {
				return u, pos, false
			}
			user = u
		}
		return user, pos, true

	case bodyModeChunked:
		for pos < length {
			consumed, next, emit, final, hasEmit, done, err := stepChunked(data[pos:length], bodyPayload(p.state))
			pos += consumed
			if err != nil {
				p.state = bodyModeNone
				return p.OnError(user, err), pos, false
			}
			if done {
				p.state = bodyModeNone
			} else {
				p.state = packBodyState(bodyModeChunked, next)
			}
			if hasEmit {
				u := p.OnData(user, emit, final)
				if u != user {
					return u, pos, false
				}
				user = u
			}
			if done {
				break
			}
		}
		return user, pos, true

	default:
		return user, pos, true
	}
}
