package catcher

import (
	"context"
	"errors"
	"net"
	"time"
)

type deadliner interface {
	SetDeadline(time.Time) error
}

// listen binds the server socket and waits for a single connection.
//
// Each accept attempt is bounded by AcceptTimeout so the handle is re-checked at least that often. The
// listening socket is closed on every return path, including right after the first successful accept.
func (s *Server) listen(h *Handle) (net.Conn, error) {
	if h.Cancelled() {
		return nil, newError(ErrNoConnection, noConnectionMessage)
	}

	ln, err := s.opts.Listen(context.Background(), "tcp", s.Addr())
	if err != nil {
		h.Cancel()
		return nil, bindError(err, s.opts.Host, s.opts.Port)
	}
	defer closeQuietly(ln)

	s.logger.Info("listening", "addr", ln.Addr().String())
	if s.opts.OnListen != nil {
		s.opts.OnListen(ln.Addr())
	}

	dl, _ := ln.(deadliner)
	for !h.Cancelled() {
		if dl != nil {
			_ = dl.SetDeadline(time.Now().Add(s.opts.AcceptTimeout))
		}

		conn, err := ln.Accept()
		if err == nil {
			s.logger.Info("accepted connection", "remote", conn.RemoteAddr().String())
			return conn, nil
		}
		if isTimeout(err) {
			continue
		}

		h.Cancel()
		return nil, acceptError(err)
	}

	return nil, newError(ErrNoConnection, noConnectionMessage)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
