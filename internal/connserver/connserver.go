// Package connserver drives an httpcore.Parser against real
// connections: it owns the accept loop, the per-connection read loop,
// and the bookkeeping (stats, shutdown, connection limits) a
// production listener needs. httpcore itself never touches a net.Conn;
// this is the thin, swappable layer that does.
package connserver

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hyperflow/httpcore/pkg/bufpool"
	"github.com/hyperflow/httpcore/pkg/httpcore"
)

// Handler fires once per completed request head, synchronously, with
// the connection that received it. A Handler that wants to take the
// connection away from HTTP (a protocol upgrade) performs the
// handshake itself against conn.NetConn() and then calls conn.TakeOver();
// connserver stops feeding bytes to the Parser as soon as the current
// Consume call returns.
type Handler func(conn *Conn, req *httpcore.Request)

// DataHandler fires for each body chunk of a request, in arrival
// order, with fin set on the final chunk (see httpcore.DataHandler).
type DataHandler func(conn *Conn, chunk []byte, fin bool)

// Config configures a Server.
type Config struct {
	Addr string

	Handler     Handler
	DataHandler DataHandler

	ReadTimeout              time.Duration
	IdleTimeout               time.Duration
	MaxConcurrentConnections int
	ReadBufferSize           int
	TLSConfig                *tls.Config

	// UseProxyProtocol, when set, makes every accepted connection
	// expect a PROXY protocol v1 preamble before any HTTP traffic.
	UseProxyProtocol bool
}

// DefaultConfig mirrors the defaults a connection-oriented HTTP server
// in this style ships with.
func DefaultConfig() Config {
	return Config{
		Addr:                     ":8080",
		ReadTimeout:              60 * time.Second,
		IdleTimeout:              120 * time.Second,
		ReadBufferSize:           bufpool.Size16KB,
		MaxConcurrentConnections: 0,
	}
}

// Stats holds atomic server-wide counters, safe to read concurrently
// with the server running.
type Stats struct {
	TotalConnections  atomic.Uint64
	ActiveConnections atomic.Int64
	TotalRequests     atomic.Uint64
	BytesRead         atomic.Uint64
	ConnectionErrors  atomic.Uint64
	RequestErrors     atomic.Uint64
	StartTime         time.Time
}

// Duration returns the time since the Server was constructed by New.
func (s *Stats) Duration() time.Duration {
	return time.Since(s.StartTime)
}

// Server accepts connections and drives one httpcore.Parser per
// connection.
type Server struct {
	config   Config
	listener net.Listener
	stats    Stats
	bufs     *bufpool.Pool

	shutdown atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
	connSem chan struct{}
}

// New constructs a Server from config, applying the same kind of
// defaulting a production listener's constructor performs.
func New(config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 60 * time.Second
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 120 * time.Second
	}
	if config.ReadBufferSize == 0 {
		config.ReadBufferSize = bufpool.Size16KB
	}

	s := &Server{
		config: config,
		done:   make(chan struct{}),
		conns:  make(map[net.Conn]struct{}),
		bufs:   bufpool.New(),
	}
	s.stats.StartTime = time.Now()

	if config.MaxConcurrentConnections > 0 {
		s.connSem = make(chan struct{}, config.MaxConcurrentConnections)
	}

	return s
}

// Stats returns the server's live statistics.
func (s *Server) Stats() *Stats {
	return &s.stats
}

// ListenAndServe listens on the configured address and serves
// connections until Shutdown or Close is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	if s.config.TLSConfig != nil {
		ln = tls.NewListener(ln, s.config.TLSConfig)
	}
	return s.Serve(ln)
}

// Serve accepts connections from ln until Shutdown or Close is called.
func (s *Server) Serve(ln net.Listener) error {
	s.listener = ln
	for {
		if s.connSem != nil {
			select {
			case s.connSem <- struct{}{}:
			case <-s.done:
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			s.stats.ConnectionErrors.Add(1)
			if s.connSem != nil {
				<-s.connSem
			}
			continue
		}

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// Shutdown stops accepting new connections and waits for active ones
// to finish, or for ctx to expire, whichever comes first.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	if s.listener != nil {
		s.listener.Close()
	}
	close(s.done)

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		s.closeAllConnections()
		return ctx.Err()
	}
}

// Close immediately tears down the server and every active connection.
func (s *Server) Close() error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	if s.listener != nil {
		s.listener.Close()
	}
	close(s.done)
	s.closeAllConnections()
	s.wg.Wait()
	return nil
}

func (s *Server) trackConnection(conn net.Conn) {
	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()
	s.stats.ActiveConnections.Add(1)
}

func (s *Server) untrackConnection(conn net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
	s.stats.ActiveConnections.Add(-1)
	if s.connSem != nil {
		<-s.connSem
	}
}

func (s *Server) closeAllConnections() {
	s.connsMu.Lock()
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.connsMu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// Conn is the per-connection user token threaded through an
// httpcore.Parser[*Conn]. It is httpcore's "opaque user token": the
// parser never reads its fields, only compares the pointer it receives
// back against the one it was given.
type Conn struct {
	ID      uuid.UUID
	netConn net.Conn
	server  *Server

	upgraded bool
	err      error
}

// NetConn returns the underlying connection, for a Handler that wants
// to take it over (a protocol upgrade) or needs its remote address.
func (c *Conn) NetConn() net.Conn {
	return c.netConn
}

// TakeOver marks the connection as handed off to something other than
// HTTP. It must only be called from within a Handler invocation, and
// only after the handler has already finished (or will never need)
// HTTP framing on this connection.
func (c *Conn) TakeOver() {
	c.upgraded = true
}

// Err returns the error that caused the parser to stop, if any.
func (c *Conn) Err() error {
	return c.err
}

func (s *Server) serveConn(rawConn net.Conn) {
	defer s.wg.Done()

	conn := &Conn{ID: uuid.New(), netConn: rawConn, server: s}
	defer func() {
		if !conn.upgraded {
			rawConn.Close()
		}
	}()
	s.trackConnection(rawConn)
	defer s.untrackConnection(rawConn)
	s.stats.TotalConnections.Add(1)

	parser := httpcore.NewParser[*Conn](
		func(user *Conn, req *httpcore.Request) *Conn {
			s.stats.TotalRequests.Add(1)
			if s.config.Handler != nil {
				s.config.Handler(user, req)
			}
			if user.upgraded {
				return nil
			}
			return user
		},
		func(user *Conn, chunk []byte, fin bool) *Conn {
			if s.config.DataHandler != nil {
				s.config.DataHandler(user, chunk, fin)
			}
			return user
		},
		func(user *Conn, err error) *Conn {
			s.stats.RequestErrors.Add(1)
			user.err = err
			return nil
		},
	)

	var proxy httpcore.ProxyPreamble
	if s.config.UseProxyProtocol {
		proxy = &httpcore.ProxyV1{}
	}

	buf := s.bufs.Get(s.config.ReadBufferSize)
	defer s.bufs.Put(buf)
	usable := len(buf) - bufpool.Padding

	for {
		if s.config.ReadTimeout > 0 {
			rawConn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}

		n, err := rawConn.Read(buf[:usable])
		if err != nil {
			return
		}
		s.stats.BytesRead.Add(uint64(n))

		result := parser.Consume(buf, n, conn, proxy)
		if result != conn {
			return
		}
	}
}
