package models

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// CaptureStatus records how a capture run ended.
type CaptureStatus string

const (
	StatusCaptured CaptureStatus = "captured" // A payload was received and decoded
	StatusFailed   CaptureStatus = "failed"   // The run ended without a usable payload
)

// Capture is a persisted capture run.
type Capture struct {
	id           string
	sequence     int
	host         string
	port         int
	status       CaptureStatus
	message      string
	version      string
	url          string
	mimeType     string
	headerParams string
	rawBody      []byte
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewCapture creates a [Capture] for a run against host:port.
func NewCapture(host string, port int, status CaptureStatus) *Capture {
	now := time.Now()
	return &Capture{
		host:      host,
		port:      port,
		status:    status,
		createdAt: now,
		updatedAt: now,
	}
}

// NewCapturedStream creates a successful [Capture] from a decoded stream.
func NewCapturedStream(host string, port int, stream *Stream, headerParams string, raw []byte) *Capture {
	c := NewCapture(host, port, StatusCaptured)
	c.version = stream.Version
	c.url = stream.URL
	c.mimeType = stream.MimeType
	c.headerParams = headerParams
	c.rawBody = raw
	return c
}

// NewFailedCapture creates a failed [Capture] carrying the failure message.
func NewFailedCapture(host string, port int, message string, raw []byte) *Capture {
	c := NewCapture(host, port, StatusFailed)
	c.message = message
	c.rawBody = raw
	return c
}

func (c *Capture) ID() string { return c.id }
func (c *Capture) Sequence() int { return c.sequence }
func (c *Capture) Host() string { return c.host }
func (c *Capture) Port() int { return c.port }
func (c *Capture) Status() CaptureStatus { return c.status }
func (c *Capture) Message() string { return c.message }
func (c *Capture) Version() string { return c.version }
func (c *Capture) URL() string { return c.url }
func (c *Capture) MimeType() string { return c.mimeType }
func (c *Capture) HeaderParams() string { return c.headerParams }
func (c *Capture) RawBody() []byte { return c.rawBody }
func (c *Capture) CreatedAt() time.Time { return c.createdAt }
func (c *Capture) UpdatedAt() time.Time { return c.updatedAt }
func (c *Capture) DeletedAt() *time.Time { return c.deletedAt }
func (c *Capture) Captured() bool { return c.status == StatusCaptured }
func (c *Capture) Addr() string { return net.JoinHostPort(c.host, strconv.Itoa(c.port)) }

func (c *Capture) SetID(id string) { c.id = id }
func (c *Capture) SetSequence(seq int) { c.sequence = seq }
func (c *Capture) SetStatus(status CaptureStatus) { c.status = status }
func (c *Capture) SetMessage(message string) { c.message = message }
func (c *Capture) SetCreatedAt(t time.Time) { c.createdAt = t }
func (c *Capture) SetUpdatedAt(t time.Time) { c.updatedAt = t }
func (c *Capture) SetDeletedAt(t *time.Time) { c.deletedAt = t }

// SetStream replaces the decoded stream fields.
func (c *Capture) SetStream(version, url, mimeType, headerParams string) {
	c.version = version
	c.url = url
	c.mimeType = mimeType
	c.headerParams = headerParams
}

// SetRawBody replaces the captured request body.
func (c *Capture) SetRawBody(raw []byte) { c.rawBody = raw }

// Validate checks the capture is consistent with its status.
func (c *Capture) Validate() error {
	if c.id == "" {
		return errors.New("capture id is required")
	}
	if c.host == "" {
		return errors.New("capture host is required")
	}
	if c.port < 0 || c.port > 65535 {
		return fmt.Errorf("invalid capture port: %d", c.port)
	}

	switch c.status {
	case StatusCaptured:
		if c.url == "" {
			return errors.New("captured stream requires a url")
		}
	case StatusFailed:
		if c.message == "" {
			return errors.New("failed capture requires a message")
		}
	default:
		return fmt.Errorf("invalid capture status: %q", c.status)
	}
	return nil
}
