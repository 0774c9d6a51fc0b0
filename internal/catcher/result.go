package catcher

// Result is the outcome of one capture run: either the raw request body or a failure, never both.
type Result struct {
	body []byte
	err  error
}

// Success builds a successful [Result]. A nil body is normalised to an empty one so that a zero-length
// payload is still distinguishable from a failure.
func Success(body []byte) Result {
	if body == nil {
		body = []byte{}
	}
	return Result{body: body}
}

// Failure builds a failed [Result]. A nil error becomes the generic "No connection established" failure.
func Failure(err error) Result {
	if err == nil {
		err = newError(ErrNoConnection, noConnectionMessage)
	}
	return Result{err: err}
}

// OK reports whether the run captured a body.
func (r Result) OK() bool { return r.err == nil && r.body != nil }

// Body returns the captured bytes, or nil for a failed run.
func (r Result) Body() []byte {
	if r.err != nil {
		return nil
	}
	return r.body
}

// Message returns the failure message, or "" for a successful run.
func (r Result) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

// Err returns the failure, or nil for a successful run.
func (r Result) Err() error { return r.err }
