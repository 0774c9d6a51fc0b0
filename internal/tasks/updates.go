package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/streamcatch/internal/catcher"
)

// ProgressUpdate represents a progress event during a capture run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase     Phase         // Operation phase
	Step      int           // Current step number within phase
	Total     int           // Total steps in this phase
	Message   string        // Human-readable message for display
	Remaining time.Duration // Time left in the wait budget
	Data      any           // Optional phase-specific data for advanced UIs
}

// Percent returns how far through the phase the update is, from 0 to 100.
func (u ProgressUpdate) Percent() int {
	if u.Total <= 0 {
		return 100
	}
	p := u.Step * 100 / u.Total
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// FormatRemaining renders d as MM:SS, truncating partial seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Operation phase enumeration
type Phase int

const (
	Listening Phase = iota
	Waiting
	Joining
	Finished
)

func (p Phase) String() string {
	switch p {
	case Listening:
		return "listening"
	case Waiting:
		return "waiting"
	case Joining:
		return "joining"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

func listeningUpdate(message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Listening,
		Step:    0,
		Total:   1,
		Message: message,
	}
}

func waitingUpdate(step, total int, remaining time.Duration, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:     Waiting,
		Step:      step,
		Total:     total,
		Message:   message,
		Remaining: remaining,
	}
}

func joiningUpdate(reason StopReason) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Joining,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Stopping capture (%s)...", reason),
	}
}

func finishedUpdate(result catcher.Result) ProgressUpdate {
	msg := fmt.Sprintf("Captured %d bytes", len(result.Body()))
	if !result.OK() {
		msg = result.Message()
	}
	return ProgressUpdate{
		Phase:   Finished,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    result,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full, skip this update
	}
}
