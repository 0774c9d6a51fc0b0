package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamcatch/internal/tasks"
)

// RunWait shows the waiting dialog while engine captures, and returns the capture outcome.
//
// When the program stops early (its context was cancelled, or the terminal failed) the capture is aborted
// and its result is read only after the engine has returned.
func RunWait(ctx context.Context, engine CaptureRunner, opts ...tea.ProgramOption) (*tasks.CaptureRunResult, error) {
	model := NewWaitModel(ctx, engine)
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)

	_, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if !model.started.Load() {
			return nil, fmt.Errorf("failed to run TUI: %w", err)
		}
		model.cancel()
	}

	<-model.Finished()
	result, rerr := model.Result()
	if result == nil && rerr == nil && err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}
	return result, rerr
}

// RunHistory opens the capture history browser.
func RunHistory(repo CaptureLister, limit int) error {
	if _, err := tea.NewProgram(NewHistoryModel(repo, limit), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
