package catcher

import (
	"errors"
	"fmt"
)

const noConnectionMessage = "No connection established"

var (
	// Failures to open the listening socket.
	ErrBind = fmt.Errorf("bind failed")
	// Unexpected (non-timeout) failures while accepting.
	ErrAccept = fmt.Errorf("accept failed")
	// Data that does not follow the POST /<length> framing.
	ErrProtocol = fmt.Errorf("protocol violation")
	// The peer closed before headers or before the declared length arrived.
	ErrPrematureClose = fmt.Errorf("connection closed prematurely")
	// Cancelled before any usable request was received.
	ErrNoConnection = fmt.Errorf("no connection established")
)

// CaptureError is the failure carried by a [Result].
//
// Error returns the human readable message shown to users; Unwrap exposes both the failure kind (one of the
// sentinel errors above) and, when present, the underlying network error.
type CaptureError struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *CaptureError) Error() string { return e.Msg }

func (e *CaptureError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, format string, args ...any) *CaptureError {
	return &CaptureError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func bindError(cause error, host string, port int) *CaptureError {
	return &CaptureError{
		Kind:  ErrBind,
		Msg:   fmt.Sprintf("%v | Unable to serve on IP %q and port %d", cause, host, port),
		Cause: cause,
	}
}

func acceptError(cause error) *CaptureError {
	return &CaptureError{
		Kind:  ErrAccept,
		Msg:   fmt.Sprintf("%v | Error with socket.accept()", cause),
		Cause: cause,
	}
}

// Kind reports which sentinel error describes err, or nil when err is not a capture failure.
func Kind(err error) error {
	for _, kind := range []error{ErrBind, ErrAccept, ErrProtocol, ErrPrematureClose, ErrNoConnection} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
