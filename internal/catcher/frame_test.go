package catcher

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func request(body string) string {
	return "POST /" + strconv.Itoa(len(body)) + " HTTP/1.1\r\nHost: 192.168.0.15:8080\r\nContent-Type: text/plain\r\n\r\n" + body
}

const payload = "streamcatcher/0.1\nhttps://cdn.example.com/live.m3u8\napplication/vnd.apple.mpegurl\nUser-Agent=Mozilla%2F5.0"

func TestFrame(t *testing.T) {
	t.Run("single chunk", func(t *testing.T) {
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		if err := f.feed([]byte(request(payload))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.complete() {
			t.Fatal("expected frame to be complete")
		}
		if got := string(f.body()); got != payload {
			t.Errorf("expected body %q, got %q", payload, got)
		}
	})

	t.Run("every two-way split", func(t *testing.T) {
		raw := []byte(request(payload))
		for i := 1; i < len(raw); i++ {
			f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
			if err := f.feed(raw[:i]); err != nil {
				t.Fatalf("split %d: unexpected error on first chunk: %v", i, err)
			}
			if err := f.feed(raw[i:]); err != nil {
				t.Fatalf("split %d: unexpected error on second chunk: %v", i, err)
			}
			if !f.complete() {
				t.Fatalf("split %d: expected frame to be complete", i)
			}
			if got := string(f.body()); got != payload {
				t.Fatalf("split %d: expected body %q, got %q", i, payload, got)
			}
		}
	})

	t.Run("byte at a time", func(t *testing.T) {
		raw := []byte(request(payload))
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		for i := range raw {
			if f.complete() {
				t.Fatalf("frame completed early at byte %d", i)
			}
			if err := f.feed(raw[i : i+1]); err != nil {
				t.Fatalf("byte %d: unexpected error: %v", i, err)
			}
		}
		if got := string(f.body()); got != payload {
			t.Errorf("expected body %q, got %q", payload, got)
		}
	})

	t.Run("separator split across chunks", func(t *testing.T) {
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		_ = f.feed([]byte("POST /3 HTTP/1.1\r\nHost: x\r\n\r"))
		if f.declared() {
			t.Fatal("headers should not be complete yet")
		}
		_ = f.feed([]byte("\nabc"))
		if !f.complete() || string(f.body()) != "abc" {
			t.Errorf("expected body abc, got %q", f.body())
		}
	})

	t.Run("zero length", func(t *testing.T) {
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		if err := f.feed([]byte("POST /0 HTTP/1.1\r\n\r\n")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.complete() {
			t.Fatal("expected zero length frame to be complete")
		}
		if body := f.body(); body == nil || len(body) != 0 {
			t.Errorf("expected empty non-nil body, got %v", body)
		}
	})

	t.Run("excess bytes are truncated", func(t *testing.T) {
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		_ = f.feed([]byte("POST /5 HTTP/1.1\r\n\r\nhello world"))
		if !f.complete() {
			t.Fatal("expected frame to be complete")
		}
		if got := string(f.body()); got != "hello" {
			t.Errorf("expected hello, got %q", got)
		}
	})

	t.Run("excess bytes in a later chunk are truncated", func(t *testing.T) {
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		_ = f.feed([]byte("POST /5 HTTP/1.1\r\n\r\nhel"))
		_ = f.feed([]byte("lo world"))
		if got := string(f.body()); got != "hello" {
			t.Errorf("expected hello, got %q", got)
		}
	})

	t.Run("partial body", func(t *testing.T) {
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		_ = f.feed([]byte("POST /10 HTTP/1.1\r\n\r\nabc"))
		if !f.declared() {
			t.Fatal("expected length to be declared")
		}
		if f.complete() {
			t.Fatal("frame should not be complete")
		}
		if f.remaining != 7 {
			t.Errorf("expected 7 bytes remaining, got %d", f.remaining)
		}
	})

	t.Run("binary body", func(t *testing.T) {
		body := "\x00\xff\r\n\r\n\x80"
		f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
		_ = f.feed([]byte("POST /" + strconv.Itoa(len(body)) + " HTTP/1.1\r\n\r\n" + body))
		if got := string(f.body()); got != body {
			t.Errorf("expected %q, got %q", body, got)
		}
	})
}

func TestFrameErrors(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		kind    error
		message string
	}{
		{
			name:    "GET request",
			input:   "GET /10 HTTP/1.1\r\nHost: x\r\n\r\n",
			kind:    ErrProtocol,
			message: "Expected an HTTP POST request",
		},
		{
			name:    "missing version",
			input:   "POST /10\r\n\r\n",
			kind:    ErrProtocol,
			message: "Expected an HTTP POST request",
		},
		{
			name:    "non-numeric length",
			input:   "POST /abc HTTP/1.1\r\n\r\n",
			kind:    ErrProtocol,
			message: `Expected "/[length]" in the URL path`,
		},
		{
			name:    "empty length",
			input:   "POST / HTTP/1.1\r\n\r\n",
			kind:    ErrProtocol,
			message: `Expected "/[length]" in the URL path`,
		},
		{
			name:    "signed length",
			input:   "POST /-5 HTTP/1.1\r\n\r\n",
			kind:    ErrProtocol,
			message: `Expected "/[length]" in the URL path`,
		},
		{
			name:    "POST only in a later header",
			input:   "PUT /1 HTTP/1.1\r\nX-Note: POST /1 HTTP/1.1\r\n\r\n",
			kind:    ErrProtocol,
			message: "Expected an HTTP POST request",
		},
		{
			name:    "length over the limit",
			input:   "POST /2000000 HTTP/1.1\r\n\r\n",
			kind:    ErrProtocol,
			message: "Declared length 2000000 exceeds the 1048576 byte limit",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			f := newFrame(DefaultMaxHeaderBytes, DefaultMaxBodyBytes)
			err := f.feed([]byte(tt.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
			if err.Error() != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, err.Error())
			}
			if f.declared() {
				t.Error("a rejected frame must not declare a length")
			}
		})
	}

	t.Run("header limit", func(t *testing.T) {
		f := newFrame(16, DefaultMaxBodyBytes)
		err := f.feed([]byte("POST /1 HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 32)))
		if !errors.Is(err, ErrProtocol) {
			t.Fatalf("expected protocol error, got %v", err)
		}
		if !strings.Contains(err.Error(), "Request headers exceed 16 bytes") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("limits disabled", func(t *testing.T) {
		f := newFrame(0, 0)
		header := "POST /2000000 HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 100000) + "\r\n\r\n"
		if err := f.feed([]byte(header)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.length != 2000000 {
			t.Errorf("expected declared length 2000000, got %d", f.length)
		}
	})
}
