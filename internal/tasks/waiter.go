package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamcatch/internal/catcher"
	"github.com/desertthunder/streamcatch/internal/shared"
)

const (
	DefaultSteps        = 180
	DefaultStepInterval = 500 * time.Millisecond
	DefaultJoinTimeout  = 5 * time.Second
)

// StopReason says why the wait loop ended.
type StopReason int

const (
	WorkerFinished  StopReason = iota // The capture worker exited on its own
	BudgetExhausted                   // Every step was used up
	Aborted                           // The context was cancelled or the abort channel closed
)

func (r StopReason) String() string {
	switch r {
	case WorkerFinished:
		return "finished"
	case BudgetExhausted:
		return "timed out"
	case Aborted:
		return "aborted"
	default:
		return ""
	}
}

// WaitOptions configures the polling budget of a [Waiter].
type WaitOptions struct {
	Steps        int           // Number of polling steps before giving up
	StepInterval time.Duration // Sleep between steps
	JoinTimeout  time.Duration // How long to wait for the worker after the handle is cancelled
	Message      string        // Shown with every waiting update, e.g. "Serving on: http://host:port"
}

// WaitResult is the outcome of [Waiter.Wait].
type WaitResult struct {
	Result  catcher.Result
	Reason  StopReason
	Elapsed time.Duration
}

// Waiter polls a capture run until it finishes, the budget runs out, or the caller gives up.
type Waiter struct {
	opts   WaitOptions
	logger *log.Logger
}

// NewWaiter creates a [Waiter]. Steps below zero mean no waiting at all; zero picks [DefaultSteps].
func NewWaiter(opts WaitOptions, logger *log.Logger) *Waiter {
	if opts.Steps == 0 {
		opts.Steps = DefaultSteps
	}
	if opts.Steps < 0 {
		opts.Steps = 0
	}
	if opts.StepInterval <= 0 {
		opts.StepInterval = DefaultStepInterval
	}
	if opts.JoinTimeout <= 0 {
		opts.JoinTimeout = DefaultJoinTimeout
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Waiter{opts: opts, logger: logger}
}

// Budget returns the total time the waiter polls before giving up.
func (w *Waiter) Budget() time.Duration {
	return time.Duration(w.opts.Steps) * w.opts.StepInterval
}

// Wait polls run once per step, reporting progress on every step.
//
// When the loop ends for any reason the handle is cancelled and the worker is given JoinTimeout to exit.
// The result is only read after a successful join; a worker that does not stop in time is abandoned and
// [shared.ErrTimeout] is returned. A nil h means the run's own handle.
func (w *Waiter) Wait(
	ctx context.Context,
	run *catcher.Run,
	h *catcher.Handle,
	progress chan<- ProgressUpdate,
	abort <-chan struct{},
) (*WaitResult, error) {
	if h == nil {
		h = run.Handle()
	}

	start := time.Now()
	total := w.opts.Steps
	remaining := total

	ticker := time.NewTicker(w.opts.StepInterval)
	defer ticker.Stop()

	var reason StopReason
loop:
	for {
		sendProgress(progress, waitingUpdate(total-remaining, total, time.Duration(remaining)*w.opts.StepInterval, w.opts.Message))

		switch {
		case remaining < 1:
			reason = BudgetExhausted
			break loop
		case ctx.Err() != nil, isClosed(abort):
			reason = Aborted
			break loop
		case !run.Running():
			reason = WorkerFinished
			break loop
		}

		select {
		case <-ticker.C:
			remaining--
		case <-run.Done():
		case <-ctx.Done():
		case <-abort:
		}
	}

	w.logger.Debug("wait loop ended", "reason", reason.String(), "steps", total-remaining)
	h.Cancel()
	sendProgress(progress, joiningUpdate(reason))

	wr := &WaitResult{Reason: reason}
	if !run.Wait(w.opts.JoinTimeout) {
		wr.Elapsed = time.Since(start)
		w.logger.Warn("capture worker did not stop", "join_timeout", w.opts.JoinTimeout)
		return wr, fmt.Errorf("%w: capture worker did not stop within %s", shared.ErrTimeout, w.opts.JoinTimeout)
	}

	wr.Result, _ = run.Result()
	wr.Elapsed = time.Since(start)
	sendProgress(progress, finishedUpdate(wr.Result))
	return wr, nil
}

func isClosed(ch <-chan struct{}) bool {
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
