package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/shared"
)

var (
	_ list.Item = captureItem{}
)

// captureItem wraps [models.Capture] to implement [list.Item].
type captureItem struct {
	capture *models.Capture
}

func (i captureItem) FilterValue() string { return i.capture.URL() + " " + i.capture.Message() }
func (i captureItem) Title() string {
	if i.capture.Captured() {
		return i.capture.URL()
	}
	return fmt.Sprintf("failed: %s", i.capture.Message())
}
func (i captureItem) Description() string {
	desc := fmt.Sprintf("#%d %s • %s", i.capture.Sequence(), shared.ShortID(i.capture.ID()), i.capture.CreatedAt().Format("2006-01-02 15:04"))
	if i.capture.MimeType() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.capture.MimeType())
	}
	return desc
}

func captureItems(captures []*models.Capture) []list.Item {
	items := make([]list.Item, len(captures))
	for i, c := range captures {
		items[i] = captureItem{capture: c}
	}
	return items
}
