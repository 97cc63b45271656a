// Package wsupgrade bridges httpcore's upgrade hand-off to
// gorilla/websocket. httpcore itself knows nothing about WebSocket: an
// application that sees a request carrying the right Upgrade headers
// returns a different user token from its request handler, at which
// point internal/connserver stops feeding bytes to the Parser and owns
// the raw net.Conn. This package performs the RFC 6455 opening
// handshake against that raw connection and a borrowed httpcore.Request
// view, then hands framing off to gorilla/websocket for the life of the
// connection.
package wsupgrade

import (
	"bufio"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/hyperflow/httpcore/pkg/httpcore"
)

// Upgrade performs the handshake described by req against conn and
// returns a gorilla/websocket connection framing subsequent traffic.
// req must be the request view from the request handler call that
// decided to take the connection over; it must not be used after this
// call (httpcore considers it invalidated once the handler returns).
func Upgrade(upgrader *websocket.Upgrader, conn net.Conn, req *httpcore.Request) (*websocket.Conn, error) {
	httpReq, err := asHTTPRequest(req)
	if err != nil {
		return nil, err
	}

	w := &hijackWriter{
		header: make(http.Header),
		bw:     bufio.NewWriter(conn),
	}
	w.brw = bufio.NewReadWriter(bufio.NewReader(conn), w.bw)
	w.conn = conn

	return upgrader.Upgrade(w, httpReq, nil)
}

// asHTTPRequest rebuilds just enough of a net/http.Request for
// gorilla/websocket's handshake validation and subprotocol negotiation
// to work against it: method, URL, header, and protocol version. The
// body is never touched -- httpcore already established this request
// carries no entity body worth streaming before the application chose
// to upgrade.
func asHTTPRequest(req *httpcore.Request) (*http.Request, error) {
	u, err := url.ParseRequestURI(string(req.Target()))
	if err != nil {
		u = &url.URL{Path: string(req.URL())}
	}

	header := make(http.Header)
	req.Headers(func(key, value []byte) bool {
		header.Add(string(key), string(value))
		return true
	})

	proto, minor := "HTTP/1.1", 1
	if req.Ancient() {
		proto, minor = "HTTP/1.0", 0
	}

	return &http.Request{
		Method:     strings.ToUpper(string(req.Method())),
		URL:        u,
		Header:     header,
		Proto:      proto,
		ProtoMajor: 1,
		ProtoMinor: minor,
		RequestURI: string(req.Target()),
	}, nil
}

// hijackWriter is the minimal http.ResponseWriter + http.Hijacker
// gorilla/websocket's Upgrader.Upgrade needs in order to drive the
// handshake over a net.Conn that did not come from net/http's own
// server -- in our case, one internal/connserver already owns and has
// stopped feeding to an httpcore.Parser.
type hijackWriter struct {
	header http.Header
	status int
	conn   net.Conn
	bw     *bufio.Writer
	brw    *bufio.ReadWriter
}

func (w *hijackWriter) Header() http.Header { return w.header }

func (w *hijackWriter) Write(b []byte) (int, error) { return w.bw.Write(b) }

func (w *hijackWriter) WriteHeader(status int) { w.status = status }

func (w *hijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.conn, w.brw, nil
}
