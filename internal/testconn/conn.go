// Package testconn provides a net.Conn that replays a fixed byte stream
// and records writes.
package testconn

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrClosed is returned by operations on a closed Conn.
var ErrClosed = errors.New("testconn: closed")

// Conn is a net.Conn backed by a byte slice.
type Conn struct {
	mu      sync.Mutex
	data    []byte
	chunk   int
	written bytes.Buffer
	closed  bool
}

// New returns a Conn whose reads return data and then io.EOF.
func New(data []byte) *Conn {
	return &Conn{data: data}
}

// NewChunked is like New but returns at most chunk bytes per Read.
func NewChunked(data []byte, chunk int) *Conn {
	return &Conn{data: data, chunk: chunk}
}

func (c *Conn) Read(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if len(c.data) == 0 {
		return 0, io.EOF
	}

	if c.chunk > 0 && len(b) > c.chunk {
		b = b[:c.chunk]
	}
	n := copy(b, c.data)
	c.data = c.data[n:]
	return n, nil
}

func (c *Conn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	return c.written.Write(b)
}

// Written returns a copy of everything written to the Conn.
func (c *Conn) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.written.Bytes()...)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Conn) LocalAddr() net.Addr                { return addr{} }
func (c *Conn) RemoteAddr() net.Addr               { return addr{} }
func (c *Conn) SetDeadline(t time.Time) error      { return nil }
func (c *Conn) SetReadDeadline(t time.Time) error  { return nil }
func (c *Conn) SetWriteDeadline(t time.Time) error { return nil }

type addr struct{}

func (addr) Network() string { return "testconn" }
func (addr) String() string  { return "testconn" }
