package catcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamcatch/internal/shared"
)

const (
	DefaultAcceptTimeout  = time.Second
	DefaultPollDelay      = 200 * time.Millisecond
	DefaultReadSize       = 4096
	DefaultMaxHeaderBytes = 64 << 10
	DefaultMaxBodyBytes   = 1 << 20
)

// Options configures a capture run. Zero values fall back to the package defaults.
type Options struct {
	Host           string        // Address to bind, e.g. "192.168.0.15" or "localhost"
	Port           int           // Port to bind; 0 picks a free port
	AcceptTimeout  time.Duration // How long each accept attempt blocks before the handle is re-checked
	PollDelay      time.Duration // How long each receive attempt blocks before the handle is re-checked
	ReadSize       int           // Receive buffer size
	MaxHeaderBytes int           // Header bytes allowed before the separator; negative disables the limit
	MaxBodyBytes   int           // Largest accepted declared length; negative disables the limit
	Logger         *log.Logger
	OnListen       func(net.Addr) // Called once the socket is bound, before the first accept

	// Listen binds the server socket. Nil means a TCP listener from [net.ListenConfig].
	Listen func(ctx context.Context, network, address string) (net.Listener, error)
}

// Server listens for, and captures, exactly one streamcatcher request.
type Server struct {
	opts   Options
	logger *log.Logger
}

// NewServer creates a [Server] with defaults applied to opts.
func NewServer(opts Options) *Server {
	if opts.AcceptTimeout <= 0 {
		opts.AcceptTimeout = DefaultAcceptTimeout
	}
	if opts.PollDelay <= 0 {
		opts.PollDelay = DefaultPollDelay
	}
	if opts.ReadSize <= 0 {
		opts.ReadSize = DefaultReadSize
	}
	switch {
	case opts.MaxHeaderBytes == 0:
		opts.MaxHeaderBytes = DefaultMaxHeaderBytes
	case opts.MaxHeaderBytes < 0:
		opts.MaxHeaderBytes = 0
	}
	switch {
	case opts.MaxBodyBytes == 0:
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	case opts.MaxBodyBytes < 0:
		opts.MaxBodyBytes = 0
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Listen == nil {
		var lc net.ListenConfig
		opts.Listen = lc.Listen
	}

	return &Server{opts: opts, logger: shared.WithLogger(opts.Logger, "component", "catcher")}
}

// Addr returns the host:port the server binds to.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
}

// Serve runs a full capture synchronously: bind, wait for one connection, read one request.
//
// The handle is always cancelled before Serve returns, whatever the outcome.
func (s *Server) Serve(h *Handle) Result {
	defer h.Cancel()

	conn, err := s.listen(h)
	if err != nil {
		s.logger.Warn("no connection", "error", err)
		return Failure(err)
	}

	result := s.capture(conn, h)
	if result.OK() {
		s.logger.Info("captured request", "bytes", len(result.Body()))
	} else {
		s.logger.Warn("capture failed", "error", result.Err())
	}
	return result
}

// Start runs [Server.Serve] on a new goroutine.
func (s *Server) Start(h *Handle) *Run {
	r := &Run{handle: h, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		defer func() {
			if p := recover(); p != nil {
				h.Cancel()
				r.result = Failure(fmt.Errorf("capture worker panicked: %v", p))
			}
		}()

		r.result = s.Serve(h)
	}()

	return r
}

// Start is shorthand for NewServer(opts).Start(h).
func Start(opts Options, h *Handle) *Run {
	return NewServer(opts).Start(h)
}

// Run is a capture running in the background.
//
// The result is written exactly once, before Done is closed; [Run.Result] refuses to hand it out earlier.
type Run struct {
	handle *Handle
	done   chan struct{}
	result Result
}

// Done is closed when the worker has exited and its result is available.
func (r *Run) Done() <-chan struct{} { return r.done }

// Handle returns the cancellation handle the run was started with.
func (r *Run) Handle() *Handle { return r.handle }

// Running reports whether the worker is still alive.
func (r *Run) Running() bool {
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the worker exits or timeout elapses, and reports whether it exited.
func (r *Run) Wait(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.done:
		return true
	case <-timer.C:
		return false
	}
}

// Result returns the outcome once the worker has exited; ok is false while it is still running.
func (r *Run) Result() (result Result, ok bool) {
	select {
	case <-r.done:
		return r.result, true
	default:
		return Result{}, false
	}
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
