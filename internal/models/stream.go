package models

import "sort"

// Stream is the media request the browser extension observed.
type Stream struct {
	Version  string            `json:"version"`
	URL      string            `json:"url"`
	MimeType string            `json:"mime_type"`
	Headers  map[string]string `json:"headers"`
}

// HeaderKeys returns the header names in sorted order.
func (s *Stream) HeaderKeys() []string {
	keys := make([]string, 0, len(s.Headers))
	for k := range s.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
