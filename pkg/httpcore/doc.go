// Package httpcore implements a streaming HTTP/1.x request parser for
// connection-oriented servers.
//
// The parser is fed arbitrary byte fragments as they arrive from a
// transport via Parser.Consume. It recognizes complete request heads,
// hands them to a request callback, and streams any entity body through
// a data callback, either Content-Length delimited or chunked. It never
// allocates per request beyond what is needed to carry a partial head
// across calls, never reads past the caller's buffer, and hands off
// cleanly when the application wants to take the connection away from
// HTTP (a protocol upgrade).
//
// Socket I/O, TLS, routing, and response writing are deliberately not
// part of this package; see internal/connserver for a driver that wires
// a Parser to a net.Conn.
package httpcore
