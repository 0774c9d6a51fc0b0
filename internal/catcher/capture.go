package catcher

import (
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/time/rate"
)

const (
	statusOK        = "200 OK"
	statusForbidden = "403 Forbidden"
)

// capture reads one request from conn until the declared body has arrived, the request is rejected, the
// peer hangs up, or the handle is cancelled.
//
// A response is always written and the connection always closed before capture returns.
func (s *Server) capture(conn net.Conn, h *Handle) Result {
	f := newFrame(s.opts.MaxHeaderBytes, s.opts.MaxBodyBytes)
	defer s.respond(conn, f)

	buf := make([]byte, s.opts.ReadSize)
	retry := rate.NewLimiter(rate.Every(s.opts.PollDelay), 1)

	var failure error
	closed := false

	for !h.Cancelled() {
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.PollDelay))
		n, err := conn.Read(buf)

		if n > 0 {
			wasDeclared := f.declared()
			if ferr := f.feed(buf[:n]); ferr != nil {
				failure = ferr
				break
			}
			if !wasDeclared && f.declared() {
				s.logger.Debug("request framed", "length", f.length, "buffered", len(f.buf))
			}
		}
		if f.complete() {
			break
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			closed = true
		case isTimeout(err):
		default:
			s.logger.Debug("receive failed, retrying", "error", err)
			_ = retry.Wait(h.Context())
		}
		if closed {
			break
		}
	}

	h.Cancel()

	switch {
	case failure != nil:
		return Failure(failure)
	case f.complete():
		return Success(f.body())
	case closed:
		return Failure(newError(ErrPrematureClose, noConnectionMessage))
	default:
		return Failure(newError(ErrNoConnection, noConnectionMessage))
	}
}

// respond writes the minimal closing response and tears the connection down, ignoring every error.
func (s *Server) respond(conn net.Conn, f *frame) {
	defer closeQuietly(conn)

	status := statusForbidden
	if f.declared() {
		status = statusOK
	}

	_ = conn.SetWriteDeadline(time.Now().Add(s.opts.AcceptTimeout))
	if _, err := io.WriteString(conn, response(status)); err != nil {
		s.logger.Debug("failed to send response", "status", status, "error", err)
	}

	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
}

func response(status string) string {
	return "HTTP/1.1 " + status + "\r\nConnection: close\r\n\r\n"
}
