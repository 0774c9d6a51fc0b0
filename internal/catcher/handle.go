package catcher

import "context"

// Handle is the cancellation flag shared by a capture worker and the code that started it.
//
// Either side may call [Handle.Cancel]; the worker always cancels the handle itself when it finishes, so a
// cancelled handle also means "the run is over or about to be".
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHandle creates a [Handle] derived from parent. Cancelling parent cancels the handle.
func NewHandle(parent context.Context) *Handle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Handle{ctx: ctx, cancel: cancel}
}

// Cancel sets the flag. Safe to call from any goroutine, any number of times.
func (h *Handle) Cancel() { h.cancel() }

// Cancelled reports whether the flag has been set.
func (h *Handle) Cancelled() bool { return h.ctx.Err() != nil }

// Done is closed once the flag is set.
func (h *Handle) Done() <-chan struct{} { return h.ctx.Done() }

// Context returns a context cancelled together with the handle.
func (h *Handle) Context() context.Context { return h.ctx }
