package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamcatch/internal/tasks"
)

// CaptureRunner runs one capture session. Implemented by [tasks.CaptureEngine].
type CaptureRunner interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, abort <-chan struct{}) (*tasks.CaptureRunResult, error)
}

// WaitModel is the "Waiting for StreamCatcher..." dialog.
type WaitModel struct {
	ctx          context.Context
	engine       CaptureRunner
	progressChan chan tasks.ProgressUpdate
	abort        chan struct{}
	abortOnce    sync.Once
	started      atomic.Bool
	finished     chan struct{} // closed once result and err are written
	cancelling   bool
	done         bool
	update       tasks.ProgressUpdate
	result       *tasks.CaptureRunResult // written by the capture goroutine before finished closes
	err          error
	outcome      captureComplete // what the view renders once done
	bar          progress.Model
	help         help.Model
	keys         keyMap
}

// NewWaitModel creates a [WaitModel] that runs engine when the program starts.
func NewWaitModel(ctx context.Context, engine CaptureRunner) *WaitModel {
	return &WaitModel{
		ctx:      ctx,
		engine:   engine,
		abort:    make(chan struct{}),
		finished: make(chan struct{}),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the capture.
func (m *WaitModel) Init() tea.Cmd {
	return m.startCapture()
}

// Update handles incoming messages and updates the model state.
func (m *WaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-8, 10), 60)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.cancel) {
			m.cancel()
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.update = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()
		case MsgCaptureComplete:
			m.outcome = msg.data.(captureComplete)
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the dialog.
func (m *WaitModel) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Waiting for StreamCatcher..."))
	b.WriteString("\n")

	if m.done {
		b.WriteString(m.renderOutcome())
		return b.String()
	}

	if m.update.Message != "" {
		b.WriteString(m.update.Message)
	}
	b.WriteString("\n\n")
	var percent float64
	if m.update.Total > 0 {
		percent = float64(m.update.Percent()) / 100
	}
	b.WriteString(m.bar.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Time left: %s\n\n", tasks.FormatRemaining(m.update.Remaining)))

	if m.cancelling {
		b.WriteString(styles.warn.Render("Cancelling..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.cancel}))
	}
	return b.String()
}

// Result returns what the capture produced, or nil and nil while the capture is still running.
func (m *WaitModel) Result() (*tasks.CaptureRunResult, error) {
	select {
	case <-m.finished:
		return m.result, m.err
	default:
		return nil, nil
	}
}

// Finished is closed once the capture has returned and [WaitModel.Result] is final.
func (m *WaitModel) Finished() <-chan struct{} { return m.finished }

// Cancelled reports whether the user cancelled the wait.
func (m *WaitModel) Cancelled() bool { return m.cancelling }

func (m *WaitModel) cancel() {
	m.abortOnce.Do(func() {
		m.cancelling = true
		close(m.abort)
	})
}

func (m *WaitModel) startCapture() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.started.Store(true)

	go func() {
		defer close(m.finished)
		result, err := m.engine.Run(m.ctx, m.progressChan, m.abort)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *WaitModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return captureCompleteMsg(m.result, m.err)
		}

		update, ok := <-m.progressChan
		if !ok {
			return captureCompleteMsg(m.result, m.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *WaitModel) renderOutcome() string {
	switch {
	case m.outcome.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.outcome.err)) + "\n"
	case m.outcome.result == nil:
		return ""
	case m.outcome.result.OK():
		return styles.ok.Render("Stream captured") + "\n" + m.outcome.result.Stream.URL + "\n"
	default:
		return styles.err.Render(m.outcome.result.Err.Error()) + "\n"
	}
}
