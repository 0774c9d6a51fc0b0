package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgCaptureComplete
	MsgCapturesLoaded
)

type captureComplete struct {
	result *tasks.CaptureRunResult
	err    error
}

type capturesLoaded struct {
	captures []*models.Capture
	err      error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// captureCompleteMsg is the constructor for [MsgCaptureComplete]
func captureCompleteMsg(result *tasks.CaptureRunResult, err error) Msg {
	return Msg{kind: MsgCaptureComplete, data: captureComplete{result, err}}
}

// capturesLoadedMsg is the constructor for [MsgCapturesLoaded]
func capturesLoadedMsg(captures []*models.Capture, err error) Msg {
	return Msg{kind: MsgCapturesLoaded, data: capturesLoaded{captures, err}}
}
