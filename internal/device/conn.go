package device

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

const (
	readChunk    = 256
	maxLineBytes = 4 << 10 // 4 KB
)

// Conn is an open, settled device connection.
//
// ReadLine must only be called from a single goroutine. WriteLine may be
// called concurrently; writes are serialized so lines never interleave.
type Conn struct {
	name string
	port Port

	buf     []byte
	pending []byte

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newConn(name string, port Port) *Conn {
	return &Conn{
		name: name,
		port: port,
		buf:  make([]byte, readChunk),
	}
}

// Name returns the port identifier the connection was opened on.
func (c *Conn) Name() string { return c.name }

// ReadLine returns the next newline-terminated line without its terminator.
// When the port read times out before a full line arrives it returns
// (nil, nil); partial data is kept for the next call.
func (c *Conn) ReadLine() ([]byte, error) {
	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			return c.take(i, i+1), nil
		}
		if len(c.pending) >= maxLineBytes {
			return c.take(len(c.pending), len(c.pending)), nil
		}

		n, err := c.port.Read(c.buf)
		if n > 0 {
			c.pending = append(c.pending, c.buf[:n]...)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.name, err)
		}
		if n == 0 {
			return nil, nil
		}
	}
}

// take copies pending[:end] out and drops pending[:consume].
func (c *Conn) take(end, consume int) []byte {
	line := make([]byte, end)
	copy(line, c.pending[:end])
	c.pending = append(c.pending[:0], c.pending[consume:]...)
	return line
}

// WriteLine writes text in full while holding the write lock.
func (c *Conn) WriteLine(text string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	data := []byte(text)
	for len(data) > 0 {
		n, err := c.port.Write(data)
		if err != nil {
			return fmt.Errorf("write %s: %w", c.name, err)
		}
		if n == 0 {
			return fmt.Errorf("write %s: %w", c.name, io.ErrShortWrite)
		}
		data = data[n:]
	}
	return nil
}

// Close closes the underlying port. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.port.Close()
	})
	return c.closeErr
}
