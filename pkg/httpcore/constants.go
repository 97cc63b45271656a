package httpcore

// Header and request limits.
const (
	// MaxHeaders is the fixed capacity of the header slot array, request
	// line included. headers[0] is the request line; headers[MaxHeaders-1]
	// is reserved for the sentinel slot that marks the end of the list.
	MaxHeaders = 50

	// MaxFallbackSize bounds the per-connection carry-over buffer used to
	// stash an incomplete head across Consume calls.
	MaxFallbackSize = 4096

	// bodyPostPadding is the minimum writable post-padding, in bytes, the
	// caller must guarantee past buffer[length] whenever the parser may
	// stream body data in place.
	bodyPostPadding = 32
)

var (
	crlf               = []byte("\r\n")
	httpSlash10        = []byte("http/1.0")
	httpSlash11        = []byte("http/1.1")
	headerContentLength = []byte("content-length")
)

const (
	sentinelCR     byte = '\r'
	sentinelFiller byte = 'a' // any byte that is not '\n'
)
