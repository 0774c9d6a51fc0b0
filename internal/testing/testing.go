// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FailConn is a [net.Conn] that serves Data to readers and fails every write.
//
// Once Data is drained reads return [io.EOF]. Close is recorded so tests can check the connection was torn down.
type FailConn struct {
	mu     sync.Mutex
	Data   []byte
	closed bool
	writes int
}

func NewFailConn(data string) *FailConn {
	return &FailConn{Data: []byte(data)}
}

func (c *FailConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}
	if len(c.Data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.Data)
	c.Data = c.Data[n:]
	return n, nil
}

func (c *FailConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	return 0, errors.New("write failed")
}

func (c *FailConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return errors.New("close failed")
}

// Closed reports whether Close was called.
func (c *FailConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Writes returns the number of attempted writes.
func (c *FailConn) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *FailConn) LocalAddr() net.Addr { return fakeAddr("local") }
func (c *FailConn) RemoteAddr() net.Addr { return fakeAddr("remote") }
func (c *FailConn) SetDeadline(time.Time) error { return nil }
func (c *FailConn) SetReadDeadline(time.Time) error { return nil }
func (c *FailConn) SetWriteDeadline(time.Time) error { return errors.New("deadline failed") }

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
