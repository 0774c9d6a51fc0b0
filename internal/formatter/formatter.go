// package formatter provides functions to export capture history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/shared"
)

const timeLayout = "2006-01-02 15:04:05"

// Export formats accepted by [Export].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// ExportToCSV converts captures to CSV format with columns: ID, Sequence, Status, Address, URL, MimeType, Message, CreatedAt
func ExportToCSV(captures []*models.Capture) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Sequence", "Status", "Address", "URL", "MimeType", "Message", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range captures {
		record := []string{
			c.ID(),
			strconv.Itoa(c.Sequence()),
			string(c.Status()),
			c.Addr(),
			c.URL(),
			c.MimeType(),
			c.Message(),
			c.CreatedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts captures to a Markdown table
func ExportToMarkdown(captures []*models.Capture) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Capture history\n\n")
	buf.WriteString(fmt.Sprintf("**Captures**: %d\n\n", len(captures)))

	if len(captures) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | ID | Status | When | Stream |\n")
	buf.WriteString("|---|----|--------|------|--------|\n")
	for _, c := range captures {
		buf.WriteString(fmt.Sprintf("| %d | `%s` | %s | %s | %s |\n",
			c.Sequence(),
			shared.ShortID(c.ID()),
			c.Status(),
			c.CreatedAt().Format(timeLayout),
			markdownCell(summary(c)),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts captures to plain text format, one line per capture
func ExportToText(captures []*models.Capture) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Captures: %d\n\n", len(captures)))
	for _, c := range captures {
		buf.WriteString(fmt.Sprintf("#%d %s [%s] %s\n", c.Sequence(), shared.ShortID(c.ID()), c.Status(), summary(c)))
	}

	return buf.Bytes(), nil
}

// CaptureDetails renders one capture with every stored field, for "history show"
func CaptureDetails(c *models.Capture, stream *models.Stream) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Capture #%d (%s)\n", c.Sequence(), c.ID()))
	buf.WriteString(fmt.Sprintf("Status:   %s\n", c.Status()))
	buf.WriteString(fmt.Sprintf("Address:  %s\n", c.Addr()))
	buf.WriteString(fmt.Sprintf("Captured: %s\n", c.CreatedAt().Format(timeLayout)))

	if !c.Captured() {
		buf.WriteString(fmt.Sprintf("Message:  %s\n", c.Message()))
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Version:  %s\n", c.Version()))
	buf.WriteString(fmt.Sprintf("URL:      %s\n", c.URL()))
	buf.WriteString(fmt.Sprintf("Type:     %s\n", c.MimeType()))
	if stream != nil && len(stream.Headers) > 0 {
		buf.WriteString("Headers:\n")
		for _, k := range stream.HeaderKeys() {
			buf.WriteString(fmt.Sprintf("  %s: %s\n", k, stream.Headers[k]))
		}
	}

	return buf.Bytes()
}

// Export renders captures in the named format: csv, markdown (or md), text (or txt)
func Export(captures []*models.Capture, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(captures)
	case FormatMarkdown, "md":
		return ExportToMarkdown(captures)
	case FormatText, "txt", "":
		return ExportToText(captures)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use csv, markdown or text)", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders captures in format and writes them to path
func WriteExport(captures []*models.Capture, format, path string) error {
	data, err := Export(captures, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func summary(c *models.Capture) string {
	if c.Captured() {
		return fmt.Sprintf("%s (%s)", c.URL(), c.MimeType())
	}
	return c.Message()
}

func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
