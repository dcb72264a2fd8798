// Package tcp streams CSV bytes over TCP connections. Several logical
// streams are multiplexed onto one connection with yamux, so a producer can
// ship many files over a single dial. Each yamux stream is one CSV byte
// stream.
package tcp

import (
	"net"

	"github.com/google/uuid"
	"github.com/hashicorp/yamux"

	"github.com/rowio/csvstream"
)

// Conn is the dialing side of a CSV-over-TCP session.
type Conn struct {
	id   uuid.UUID
	conn net.Conn
	mux  *yamux.Session
}

// Dial connects to addr and sets up stream multiplexing.
func Dial(addr string, opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	conn, err := o.dial(addr)
	if err != nil {
		return nil, err
	}
	mux, err := yamux.Client(conn, nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Conn{id: uuid.New(), conn: conn, mux: mux}, nil
}

// ID returns the session identifier.
func (c *Conn) ID() string {
	return c.id.String()
}

// OpenSink opens a fresh logical stream for sending one CSV stream. Closing
// the sink half-closes the stream, which the receiving side observes as end
// of stream.
func (c *Conn) OpenSink() (csvstream.Sink, error) {
	st, err := c.mux.OpenStream()
	if err != nil {
		return nil, err
	}
	return &stream{s: st}, nil
}

// OpenSource accepts a logical stream initiated by the remote side.
func (c *Conn) OpenSource() (csvstream.Source, error) {
	st, err := c.mux.AcceptStream()
	if err != nil {
		return nil, err
	}
	return &stream{s: st}, nil
}

// Close tears down the session and the underlying connection.
func (c *Conn) Close() error {
	if c.mux != nil {
		c.mux.Close()
		c.mux = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Listener is the accepting side of CSV-over-TCP sessions.
type Listener struct {
	ln net.Listener
}

// Listen binds addr.
func Listen(addr string, opts ...Option) (*Listener, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	ln, err := o.listen(addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln}, nil
}

// Serve accepts connections and hands every incoming logical stream to
// handler as a Source. The handler owns the source and must close it. Serve
// returns when the listener is closed.
func (l *Listener) Serve(handler func(csvstream.Source)) error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return err
		}
		go l.serveConn(conn, handler)
	}
}

func (l *Listener) serveConn(conn net.Conn, handler func(csvstream.Source)) {
	mux, err := yamux.Server(conn, nil)
	if err != nil {
		conn.Close()
		return
	}
	defer conn.Close()
	for {
		st, err := mux.AcceptStream()
		if err != nil {
			return
		}
		go handler(&stream{s: st})
	}
}

// Addr returns the listener address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting; in-flight streams keep running until closed.
func (l *Listener) Close() error {
	return l.ln.Close()
}
