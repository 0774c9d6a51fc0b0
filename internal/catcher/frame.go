package catcher

import (
	"bytes"
	"strconv"
	"strings"
)

var headerSeparator = []byte("\r\n\r\n")

const (
	methodToken  = "POST /"
	versionToken = " HTTP/"
)

// frame accumulates the bytes of a single connection.
//
// Until the header separator shows up every byte is tentatively a header byte. Once it is found the request
// line is validated, the declared length is fixed, and only the bytes after the separator are kept.
type frame struct {
	buf       []byte
	length    int // declared body length, -1 until the headers are complete
	remaining int
	maxHeader int
	maxBody   int
}

func newFrame(maxHeader, maxBody int) *frame {
	return &frame{length: -1, maxHeader: maxHeader, maxBody: maxBody}
}

// declared reports whether the request line has been accepted and a body length fixed.
func (f *frame) declared() bool { return f.length >= 0 }

// complete reports whether at least the declared number of body bytes has been received.
func (f *frame) complete() bool { return f.declared() && f.remaining <= 0 }

// feed appends a received chunk and advances the frame. A non-nil error is a protocol failure.
func (f *frame) feed(chunk []byte) error {
	f.buf = append(f.buf, chunk...)
	if f.declared() {
		f.remaining -= len(chunk)
		return nil
	}

	idx := bytes.Index(f.buf, headerSeparator)
	headerLen := idx
	if idx < 0 {
		headerLen = len(f.buf)
	}
	if f.maxHeader > 0 && headerLen > f.maxHeader {
		return newError(ErrProtocol, "Request headers exceed %d bytes", f.maxHeader)
	}
	if idx < 0 {
		return nil
	}

	length, err := parseRequestLine(f.buf[:idx])
	if err != nil {
		return err
	}
	if f.maxBody > 0 && length > f.maxBody {
		return newError(ErrProtocol, "Declared length %d exceeds the %d byte limit", length, f.maxBody)
	}

	partial := f.buf[idx+len(headerSeparator):]
	body := make([]byte, len(partial))
	copy(body, partial)

	f.buf = body
	f.length = length
	f.remaining = length - len(partial)
	return nil
}

// body returns exactly the declared number of bytes; anything received past it is dropped.
func (f *frame) body() []byte {
	if !f.declared() {
		return nil
	}
	if len(f.buf) > f.length {
		return f.buf[:f.length]
	}
	return f.buf
}

// parseRequestLine checks for "POST /<length> HTTP/<version>" and returns the length.
//
// Only the request line is decoded to text; the rest of the header block is never inspected.
func parseRequestLine(header []byte) (int, error) {
	line := header
	if i := bytes.IndexByte(header, '\n'); i >= 0 {
		line = header[:i]
	}
	text := strings.TrimSuffix(string(line), "\r")

	if !strings.HasPrefix(text, methodToken) || !strings.Contains(text, versionToken) {
		return 0, newError(ErrProtocol, "Expected an HTTP POST request")
	}

	path, _, _ := strings.Cut(text[len(methodToken):], versionToken)
	if !isDigits(path) {
		return 0, newError(ErrProtocol, `Expected "/[length]" in the URL path`)
	}

	length, err := strconv.Atoi(path)
	if err != nil {
		return 0, newError(ErrProtocol, `Expected "/[length]" in the URL path`)
	}
	return length, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
