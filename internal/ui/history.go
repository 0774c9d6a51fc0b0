package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamcatch/internal/formatter"
	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/playback"
)

// CaptureLister loads saved captures, newest first. Implemented by repositories.CaptureRepository.
type CaptureLister interface {
	Recent(limit int) ([]*models.Capture, error)
}

// ViewState represents the current view in the history browser.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
)

// HistoryModel browses saved captures.
type HistoryModel struct {
	repo     CaptureLister
	limit    int
	view     ViewState
	width    int
	height   int
	list     list.Model
	selected *models.Capture
	err      error
	help     help.Model
	keys     keyMap
}

// NewHistoryModel creates a [HistoryModel] showing up to limit captures.
func NewHistoryModel(repo CaptureLister, limit int) *HistoryModel {
	return &HistoryModel{
		repo:  repo,
		limit: limit,
		view:  ListView,
		list:  list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:  help.New(),
		keys:  newKeyMap(),
	}
}

// Init loads the captures.
func (m *HistoryModel) Init() tea.Cmd {
	return m.loadCaptures()
}

// Update handles incoming messages and updates the model state.
func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			return m, tea.Quit
		}
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		if msg.kind == MsgCapturesLoaded {
			data := msg.data.(capturesLoaded)
			if data.err != nil {
				m.err = data.err
				return m, nil
			}
			m.list = list.New(captureItems(data.captures), list.NewDefaultDelegate(), 0, 0)
			m.list.Title = fmt.Sprintf("Captures (%d)", len(data.captures))
			if m.width > 0 {
				m.list.SetSize(m.width-4, m.height-8)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *HistoryModel) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress any key to quit", m.err))
	}

	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
	}
}

func (m *HistoryModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.list.SelectedItem().(captureItem); ok {
			m.selected = item.capture
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *HistoryModel) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *HistoryModel) loadCaptures() tea.Cmd {
	return func() tea.Msg {
		captures, err := m.repo.Recent(m.limit)
		return capturesLoadedMsg(captures, err)
	}
}

func (m *HistoryModel) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	stream, _ := playback.StreamFromCapture(m.selected)
	body := string(formatter.CaptureDetails(m.selected, stream))
	if stream != nil {
		body += "\nPlayback URL:\n" + playback.PlaybackURL(stream) + "\n"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", styles.box.Render(body), helpView)
}
